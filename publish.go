package waffles

// Publishing of per-channel analysis summaries over a ZMQ PUB socket, for
// live monitors that watch a calibration run converge.

import (
	"encoding/json"
	"fmt"

	zmq "github.com/pebbe/zmq4"
)

// CellSummary condenses one grid cell for publication: the channel identity,
// its position in the module map, and the mean of the chosen analysis result
// over the cell's waveforms.
type CellSummary struct {
	Endpoint int     `json:"endpoint"`
	Channel  int     `json:"channel"`
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	NWf      int     `json:"n_waveforms"`
	Label    string  `json:"label"`
	Key      string  `json:"key"`
	Mean     float64 `json:"mean"`
}

// GridSummaries computes one CellSummary per occupied cell from the analysis
// result stored under (label, key), in row-major order.
func GridSummaries(g *ChannelWsGrid, label, key string) ([]CellSummary, error) {
	var out []CellSummary
	err := g.EachCell(func(pos GridPosition, ws *WaveformSet) error {
		var sum float64
		for i, wf := range ws.Waveforms() {
			ana, err := wf.GetAnalysis(label)
			if err != nil {
				return fmt.Errorf("cell (%d, %d), waveform %d: %w", pos.Row, pos.Col, i, err)
			}
			v, err := ana.Result.Float(key)
			if err != nil {
				return fmt.Errorf("cell (%d, %d), waveform %d: %w", pos.Row, pos.Col, i, err)
			}
			sum += v
		}
		uc := g.ChannelMap().At(pos.Row, pos.Col)
		out = append(out, CellSummary{
			Endpoint: uc.Endpoint,
			Channel:  uc.Channel,
			Row:      pos.Row,
			Col:      pos.Col,
			NWf:      ws.NWaveforms(),
			Label:    label,
			Key:      key,
			Mean:     sum / float64(ws.NWaveforms()),
		})
		return nil
	})
	return out, err
}

// PublishSummaries forwards every CellSummary from its input channel to a
// ZMQ PUB socket bound on portnum, as a topic frame "summary" followed by a
// JSON frame. It returns when the abort channel closes.
func PublishSummaries(summaries <-chan CellSummary, abort <-chan struct{}, portnum int) error {
	pubSocket, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return err
	}
	defer pubSocket.Close()
	if err := pubSocket.Bind(fmt.Sprintf("tcp://*:%d", portnum)); err != nil {
		return err
	}

	for {
		select {
		case <-abort:
			return nil
		case s := <-summaries:
			msg, err := json.Marshal(s)
			if err != nil {
				ProblemLogger.Printf("could not encode cell summary: %v", err)
				continue
			}
			if _, err := pubSocket.Send("summary", zmq.SNDMORE); err != nil {
				return err
			}
			if _, err := pubSocket.SendBytes(msg, 0); err != nil {
				return err
			}
		}
	}
}
