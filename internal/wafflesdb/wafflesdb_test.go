package wafflesdb

import (
	"context"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// fakeConn satisfies clickhouse.Conn via embedding and captures the inserted
// queries, so the message lifecycle can be exercised without a server.
type fakeConn struct {
	clickhouse.Conn
	inserts chan string
}

func (f fakeConn) AsyncInsert(ctx context.Context, query string, wait bool, args ...any) error {
	f.inserts <- query
	return nil
}

func startFakeConnection(inserts chan string, abort <-chan struct{}) *Connection {
	db := &Connection{
		conn:   fakeConn{inserts: inserts},
		runmsg: make(chan *AnalysisRunMessage),
		filmsg: make(chan *FileMessage),
	}
	db.Add(1)
	go db.handleConnection(abort)
	return db
}

func TestShutdownDrainsInFlightMessages(t *testing.T) {
	inserts := make(chan string, 8)
	abort := make(chan struct{})
	db := startFakeConnection(inserts, abort)

	run := &AnalysisRunMessage{ID: NewRunID(), Start: time.Now()}
	db.RecordRun(run)
	db.RecordFile(&FileMessage{RunID: run.ID, Filename: "out.h5", Filetype: "hdf5"})
	db.RecordFile(&FileMessage{RunID: run.ID, Filename: "means.npy", Filetype: "npy"})
	db.FinishRun(run)

	db.Disconnect()
	close(abort)
	db.Wait()

	if got := len(inserts); got != 4 {
		t.Errorf("%d inserts reached the server, want 4 (run + 2 files + finish)", got)
	}
	if run.End.IsZero() {
		t.Error("FinishRun did not stamp the end time")
	}
	if run.End.Before(run.Start) {
		t.Errorf("end time %v precedes start time %v", run.End, run.Start)
	}
}

func TestRecordRunBlocksUntilAccepted(t *testing.T) {
	// RecordRun hands its message over synchronously, so the run row is
	// guaranteed to precede any file row sent afterwards.
	inserts := make(chan string, 8)
	abort := make(chan struct{})
	db := startFakeConnection(inserts, abort)

	db.RecordRun(&AnalysisRunMessage{ID: NewRunID()})
	db.RecordFile(&FileMessage{Filename: "out.h5"})

	db.Disconnect()
	close(abort)
	db.Wait()

	first := <-inserts
	if want := "INSERT INTO analysisruns"; len(first) < len(want) || first[:len(want)] != want {
		t.Errorf("first insert was %q, want the analysisruns row", first)
	}
}

func TestDummyConnectionLifecycle(t *testing.T) {
	db := DummyConnection()
	if db.IsConnected() {
		t.Fatal("dummy connection reports connected")
	}

	// All of these must be harmless no-ops, and the shutdown sequence must
	// return instead of blocking.
	db.RecordRun(&AnalysisRunMessage{ID: NewRunID()})
	db.RecordFile(&FileMessage{Filename: "out.h5"})
	db.FinishRun(&AnalysisRunMessage{})
	db.FinishRun(nil)
	db.Disconnect()
	db.Wait()
}
