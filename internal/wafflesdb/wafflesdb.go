// Package wafflesdb records analysis-run metadata in a ClickHouse database.
package wafflesdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Connection wraps a ClickHouse connection plus the message channels used to
// serialize inserts through a single handling goroutine.
//
// Shutdown order matters: make the last Record/Finish call, then Disconnect
// (drains in-flight asynchronous messages), then close the abort channel,
// then Wait for the handling goroutine to exit. Closing the abort channel
// with messages still in flight would lose them.
type Connection struct {
	conn   clickhouse.Conn
	err    error
	runmsg chan *AnalysisRunMessage
	filmsg chan *FileMessage
	sends  sync.WaitGroup // in-flight asynchronous messages
	sync.WaitGroup        // the handling goroutine
}

const databaseName = "waffles" // official SQL name of the database

// IsConnected reports whether the connection is usable.
func (db *Connection) IsConnected() bool {
	return (db != nil) && (db.conn != nil) && (db.err == nil)
}

// PingServer opens a throwaway connection and reports the server version.
func PingServer() error {
	db := createConnection()
	if !db.IsConnected() {
		return fmt.Errorf("database is not connected")
	}
	v, err := db.conn.ServerVersion()
	if err != nil {
		return err
	}
	fmt.Printf("ClickHouse server is alive. Version:\n%s\n", v)
	return db.conn.Close()
}

// StartConnection connects to the database and starts the goroutine that
// handles insert messages until the abort channel closes.
func StartConnection(abort <-chan struct{}) *Connection {
	db := createConnection()
	db.Add(1)
	go db.handleConnection(abort)
	return db
}

// DummyConnection returns a Connection that accepts and drops all messages,
// for runs where no database was requested. Disconnect and Wait return
// immediately on a dummy.
func DummyConnection() *Connection {
	return &Connection{}
}

func createConnection() *Connection {
	db := &Connection{}
	dbUser := os.Getenv("WAFFLES_DB_USER")
	dbPass := os.Getenv("WAFFLES_DB_PASSWORD")
	opt := clickhouse.Options{
		Addr: []string{"localhost:9000"},
		Auth: clickhouse.Auth{
			Database: databaseName,
			Username: dbUser,
			Password: dbPass,
		},
	}
	ctx := context.Background()
	conn, err := clickhouse.Open(&opt)
	if err != nil {
		db.err = err
		return db
	}
	db.conn = conn

	if err = conn.Ping(ctx); err != nil {
		if exception, ok := err.(*clickhouse.Exception); ok {
			fmt.Printf("Exception [%d] %s \n%s\n", exception.Code, exception.Message, exception.StackTrace)
		}
		db.err = err
		return db
	}

	db.runmsg = make(chan *AnalysisRunMessage)
	db.filmsg = make(chan *FileMessage)
	return db
}

func (db *Connection) handleConnection(abort <-chan struct{}) {
	defer db.Done()
	for {
		select {
		case <-abort:
			return
		case rmsg := <-db.runmsg:
			db.handleRunMessage(rmsg)
		case fmsg := <-db.filmsg:
			db.handleFileMessage(fmsg)
		}
	}
}

// RecordRun takes an AnalysisRunMessage and stores it in the DB (if it's
// open). This call blocks until the handling goroutine accepts the message,
// which guarantees that the run row exists before any corresponding calls to
// RecordFile are handled.
func (db *Connection) RecordRun(msg *AnalysisRunMessage) {
	if !db.IsConnected() || msg == nil {
		return
	}
	db.runmsg <- msg
}

// FinishRun stamps the end time on msg and re-inserts it asynchronously.
func (db *Connection) FinishRun(msg *AnalysisRunMessage) {
	if !db.IsConnected() || msg == nil {
		return
	}
	msg.End = time.Now()
	db.sends.Add(1)
	go func() {
		defer db.sends.Done()
		db.runmsg <- msg
	}()
}

// RecordFile stores one produced-file row asynchronously.
func (db *Connection) RecordFile(msg *FileMessage) {
	if !db.IsConnected() || msg == nil {
		return
	}
	db.sends.Add(1)
	go func() {
		defer db.sends.Done()
		db.filmsg <- msg
	}()
}

// Disconnect blocks until every in-flight asynchronous message has been
// handed to the handling goroutine. Call it after the last Record/Finish
// call and before closing the abort channel, or in-flight rows are lost.
func (db *Connection) Disconnect() {
	if db == nil {
		return
	}
	db.sends.Wait()
}

func (db *Connection) handleRunMessage(m *AnalysisRunMessage) {
	if !db.IsConnected() {
		return
	}
	ctx := context.Background()
	const nowait = false
	formattedStart := m.Start.Format("2006-01-02 15:04:05.000000")
	formattedEnd := m.End.Format("2006-01-02 15:04:05.000000")
	if err := db.conn.AsyncInsert(ctx, `INSERT INTO analysisruns VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, nowait,
		m.ID, m.Hostname, m.Version, m.GoVersion, m.SourceFile, m.Detector,
		m.RunNumber, m.NWaveforms, m.PointsPerWf, m.TimeStepNS,
		formattedStart, formattedEnd,
	); err != nil {
		fmt.Println("Error raised on AsyncInsert into analysisruns ", err)
		db.err = err
	}
}

func (db *Connection) handleFileMessage(m *FileMessage) {
	if !db.IsConnected() {
		return
	}
	ctx := context.Background()
	const nowait = false
	if err := db.conn.AsyncInsert(ctx, `INSERT INTO outputfiles VALUES (?, ?, ?, ?, ?)`, nowait,
		m.RunID, m.Filename, m.Filetype, m.Records, m.Size,
	); err != nil {
		fmt.Println("Error raised on AsyncInsert into outputfiles ", err)
		db.err = err
	}
}
