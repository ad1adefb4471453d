// Command waffles runs the batch calibration pipeline: load a waveform file,
// bucket it onto a detector channel map, analyse every waveform, and emit
// histograms, exports, run records and live summaries as configured.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dunepds/waffles"
)

var githash = "githash not computed"
var buildDate = "build date not computed"

// makeFileExist checks that dir/filename exists, and creates the directory
// and file if it doesn't.
func makeFileExist(dir, filename string) (string, error) {
	if strings.Contains(dir, "$HOME") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = strings.Replace(dir, "$HOME", home, 1)
	}

	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		if err2 := os.MkdirAll(dir, 0775); err2 != nil {
			return "", err2
		}
	}

	// Create an empty file dir/filename, if it doesn't exist.
	fullname := path.Join(dir, filename)
	_, err := os.Stat(fullname)
	if os.IsNotExist(err) {
		f, err2 := os.OpenFile(fullname, os.O_WRONLY|os.O_CREATE, 0664)
		if err2 != nil {
			return "", err2
		}
		f.Close()
	}
	return fullname, nil
}

// setupViper sets up the viper configuration manager: says where to find
// config files and the filename and suffix. Sets some defaults.
func setupViper() error {
	viper.SetDefault("Verbose", false)
	viper.SetDefault("analysis.label", "standard")
	viper.SetDefault("analysis.baseline_limits", []int{0, 100})
	viper.SetDefault("analysis.int_ll", 135)
	viper.SetDefault("analysis.int_ul", 165)
	viper.SetDefault("analysis.amp_ll", 100)
	viper.SetDefault("analysis.amp_ul", 300)
	viper.SetDefault("histogram.bins", 100)
	viper.SetDefault("histogram.low", -10000.0)
	viper.SetDefault("histogram.high", 50000.0)
	viper.SetDefault("publish.port", 5560)
	viper.SetDefault("chmapdb.host", "localhost")
	viper.SetDefault("chmapdb.dbname", "pdsconditions")

	HOME, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("Error finding User Home Dir: %s\n", err)
	}
	dotWaffles := filepath.Join(HOME, ".waffles")
	const filename string = "config"
	const suffix string = ".yaml"
	if _, err := makeFileExist(dotWaffles, filename+suffix); err != nil {
		return err
	}

	viper.SetConfigName(filename)
	viper.AddConfigPath(filepath.FromSlash("/etc/waffles"))
	viper.AddConfigPath(dotWaffles)
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %s", err)
	}
	return nil
}

func startLogger(pfname string) *log.Logger {
	probFile, err := os.OpenFile(pfname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		msg := fmt.Sprintf("Could not open log file '%s'", pfname)
		panic(msg)
	}
	probLogger := log.New(probFile, "", log.LstdFlags)
	probLogger.SetOutput(&lumberjack.Logger{
		Filename:   pfname,
		MaxSize:    10,   // megabytes after which new file is created
		MaxBackups: 4,    // number of backups
		MaxAge:     180,  // days
		Compress:   true, // whether to gzip the backups
	})
	return probLogger
}

func main() {
	buildDate = strings.Replace(buildDate, ".", " ", -1) // workaround for Make problems
	waffles.Build.Date = buildDate
	waffles.Build.Githash = githash
	waffles.Build.Summary = fmt.Sprintf("WAFFLES version %s (git commit %s)", waffles.Build.Version, githash)
	if host, err := os.Hostname(); err == nil {
		waffles.Build.Host = host
	} else {
		waffles.Build.Host = "host not detected"
	}

	printVersion := flag.Bool("version", false, "print version and quit")
	inputFile := flag.String("file", "", "waveform file to process (.h5/.hdf5, .root, or .pkl)")
	apaNumber := flag.Int("apa", 1, "APA number whose channel map to use (1-4)")
	mapFromDB := flag.Bool("dbmap", false, "load the channel map from the MySQL conditions database instead of the compiled-in layout")
	outputFile := flag.String("out", "", "write the analysed WaveformSet to this HDF5 file")
	npyFile := flag.String("npy", "", "write per-cell mean waveforms to this .npy file")
	overwrite := flag.Bool("overwrite", false, "overwrite existing output files")
	publish := flag.Bool("publish", false, "publish per-cell summaries on the ZMQ port")
	recordDB := flag.Bool("db", false, "record this run in the ClickHouse database")
	flag.Parse()

	if *printVersion {
		fmt.Printf("This is WAFFLES version %s\n", waffles.Build.Version)
		fmt.Printf("Git commit hash: %s\n", githash)
		fmt.Printf("Build time: %s\n", buildDate)
		fmt.Printf("Built on go version %s\n", runtime.Version())
		os.Exit(0)
	}
	if *inputFile == "" {
		fmt.Println("No input file given; see -help.")
		os.Exit(1)
	}

	// Start logging problems and updates to 2 log files.
	HOME, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	logdir := filepath.Join(HOME, ".waffles", "logs")
	problemname, err := makeFileExist(logdir, "problems.log")
	if err != nil {
		panic(err)
	}
	logname, err := makeFileExist(logdir, "updates.log")
	if err != nil {
		panic(err)
	}
	waffles.ProblemLogger = startLogger(problemname)
	waffles.UpdateLogger = startLogger(logname)
	fmt.Printf("Logging problems       to %s\n", problemname)
	fmt.Printf("Logging run summaries  to %s\n\n", logname)

	// Find config file, creating it if needed, and read it.
	if err := setupViper(); err != nil {
		panic(err)
	}

	cfg := pipelineConfig{
		inputFile:  *inputFile,
		apaNumber:  *apaNumber,
		mapFromDB:  *mapFromDB,
		outputFile: *outputFile,
		npyFile:    *npyFile,
		overwrite:  *overwrite,
		publish:    *publish,
		recordDB:   *recordDB,
	}
	if err := runPipeline(cfg); err != nil {
		waffles.ProblemLogger.Printf("pipeline failed: %v", err)
		fmt.Fprintf(os.Stderr, "waffles: %v\n", err)
		os.Exit(1)
	}
}
