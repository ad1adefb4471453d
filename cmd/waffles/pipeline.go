package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/viper"

	"github.com/dunepds/waffles"
	"github.com/dunepds/waffles/hdf5io"
	"github.com/dunepds/waffles/internal/wafflesdb"
	"github.com/dunepds/waffles/npyexport"
	"github.com/dunepds/waffles/pickleio"
	"github.com/dunepds/waffles/rootio"
)

type pipelineConfig struct {
	inputFile  string
	apaNumber  int
	mapFromDB  bool
	outputFile string
	npyFile    string
	overwrite  bool
	publish    bool
	recordDB   bool
}

// lookupChannelMap returns the channel map for the requested APA, either from
// the compiled-in layouts or from the conditions database when so configured.
func lookupChannelMap(cfg pipelineConfig, runNumber int) (*waffles.ChannelMap, error) {
	if _, ok := waffles.APAMaps[cfg.apaNumber]; !ok {
		return nil, fmt.Errorf("there is no APA %d; valid APAs are 1-4", cfg.apaNumber)
	}
	if !cfg.mapFromDB {
		return waffles.APAMaps[cfg.apaNumber], nil
	}
	db, err := waffles.ConnectChannelMapDB(
		os.Getenv("WAFFLES_DB_USER"), os.Getenv("WAFFLES_DB_PASSWORD"),
		viper.GetString("chmapdb.host"), viper.GetString("chmapdb.dbname"))
	if err != nil {
		return nil, fmt.Errorf("cannot reach the conditions database: %w", err)
	}
	defer db.Close()
	detector := fmt.Sprintf("APA%d", cfg.apaNumber)
	return waffles.LoadChannelMapFromDB(db, detector, runNumber,
		waffles.APARows, waffles.APAColumns)
}

// loadWaveformSet dispatches on the input file extension.
func loadWaveformSet(path string) (*waffles.WaveformSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h5", ".hdf5":
		return hdf5io.Load(path)
	case ".root":
		return rootio.Load(path)
	case ".pkl", ".pickle":
		return pickleio.Load(path)
	}
	return nil, fmt.Errorf("unrecognized waveform file extension on '%s'", path)
}

func runPipeline(cfg pipelineConfig) error {
	start := time.Now()
	ws, err := loadWaveformSet(cfg.inputFile)
	if err != nil {
		return err
	}
	waffles.UpdateLogger.Printf("loaded %d waveforms (%d points each) from %s",
		ws.NWaveforms(), ws.PointsPerWf(), cfg.inputFile)

	chMap, err := lookupChannelMap(cfg, ws.Runs()[0])
	if err != nil {
		return err
	}
	grid, err := waffles.BuildChannelWsGrid(chMap, ws)
	if err != nil {
		return err
	}
	waffles.UpdateLogger.Printf("grid for APA %d: %d of %d cells occupied",
		cfg.apaNumber, grid.NOccupiedCells(), chMap.Rows()*chMap.Columns())

	label := viper.GetString("analysis.label")
	analyzer, err := waffles.NewBasicWfAna(waffles.IPDict{
		"baseline_limits": viper.GetIntSlice("analysis.baseline_limits"),
		"int_ll":          viper.GetInt("analysis.int_ll"),
		"int_ul":          viper.GetInt("analysis.int_ul"),
		"amp_ll":          viper.GetInt("analysis.amp_ll"),
		"amp_ul":          viper.GetInt("analysis.amp_ul"),
	})
	if err != nil {
		return err
	}
	if err := analyzer.CheckInputParameters(ws.PointsPerWf()); err != nil {
		return err
	}
	if err := grid.Analyse(label, analyzer); err != nil {
		return err
	}

	histos, err := grid.ComputeCalibHistograms(label, "integral",
		viper.GetInt("histogram.bins"),
		viper.GetFloat64("histogram.low"),
		viper.GetFloat64("histogram.high"))
	if err != nil {
		return err
	}
	for pos, h := range histos {
		mu, sigma := h.GaussianEstimate()
		waffles.UpdateLogger.Printf("cell (%d, %d) channel %s: %d entries, integral peak %.1f +- %.1f",
			pos.Row, pos.Col, grid.ChannelMap().At(pos.Row, pos.Col), h.Filled, mu, sigma)
	}

	summaries, err := waffles.GridSummaries(grid, label, "integral")
	if err != nil {
		return err
	}
	if viper.GetBool("Verbose") {
		spew.Dump(summaries)
	}

	if cfg.publish {
		port := viper.GetInt("publish.port")
		err := feedPublisher(summaries, func(ch <-chan waffles.CellSummary, abort <-chan struct{}) error {
			return waffles.PublishSummaries(ch, abort, port)
		})
		if err != nil {
			waffles.ProblemLogger.Printf("publishing failed: %v", err)
		}
	}

	runID := wafflesdb.NewRunID()
	db := wafflesdb.DummyConnection()
	dbAbort := make(chan struct{})
	var runRecord *wafflesdb.AnalysisRunMessage
	// Finish the run row and drain pending inserts before stopping the
	// handling goroutine, on every return path.
	defer func() {
		db.FinishRun(runRecord)
		db.Disconnect()
		close(dbAbort)
		db.Wait()
	}()
	if cfg.recordDB {
		db = wafflesdb.StartConnection(dbAbort)
		hostname, _ := os.Hostname()
		runRecord = &wafflesdb.AnalysisRunMessage{
			ID:          runID,
			Hostname:    hostname,
			Version:     waffles.Build.Version,
			GoVersion:   runtime.Version(),
			SourceFile:  cfg.inputFile,
			Detector:    fmt.Sprintf("APA%d", cfg.apaNumber),
			RunNumber:   ws.Runs()[0],
			NWaveforms:  ws.NWaveforms(),
			PointsPerWf: ws.PointsPerWf(),
			TimeStepNS:  ws.TimeStepNS(),
			Start:       start,
		}
		db.RecordRun(runRecord)
	}

	if cfg.outputFile != "" {
		if err := hdf5io.Save(ws, cfg.outputFile, cfg.overwrite); err != nil {
			return err
		}
		recordOutput(db, runID, cfg.outputFile, "hdf5", ws.NWaveforms())
	}
	if cfg.npyFile != "" {
		if err := npyexport.WriteCellMeans(grid, cfg.npyFile, cfg.overwrite); err != nil {
			return err
		}
		recordOutput(db, runID, cfg.npyFile, "npy", grid.NOccupiedCells())
	}

	waffles.UpdateLogger.Printf("pipeline done in %v", time.Since(start))
	return nil
}

// feedPublisher streams summaries to a publisher running in its own
// goroutine, then shuts it down and returns its error. A publisher that fails
// before consuming everything (e.g. its port is already bound) must not
// strand the sender.
func feedPublisher(summaries []waffles.CellSummary, publish func(<-chan waffles.CellSummary, <-chan struct{}) error) error {
	ch := make(chan waffles.CellSummary)
	abort := make(chan struct{})
	errc := make(chan error, 1)
	go func() { errc <- publish(ch, abort) }()
	for _, s := range summaries {
		select {
		case ch <- s:
		case err := <-errc:
			return err
		}
	}
	close(abort)
	return <-errc
}

func recordOutput(db *wafflesdb.Connection, runID, path, filetype string, records int) {
	var size int64
	if st, err := os.Stat(path); err == nil {
		size = st.Size()
	}
	db.RecordFile(&wafflesdb.FileMessage{
		RunID:    runID,
		Filename: path,
		Filetype: filetype,
		Records:  records,
		Size:     size,
	})
}
