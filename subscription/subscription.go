// Package subscription streams catch-up and live series data to one
// websocket client.
package subscription

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/broker"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/messages"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/series"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/storage"
)

type Subscription struct {
	inputSeries []string
	operators   []series.Operator
}

func New(req *Request, start time.Time) (*Subscription, error) {
	sub := &Subscription{
		operators:   make([]series.Operator, len(req.Series)),
		inputSeries: make([]string, len(req.Series)),
	}

	for idx, sn := range req.Series {
		inputSeriesName, op, err := series.Parse(sn, start)
		if err != nil {
			return nil, errors.Wrap(err, "parse series")
		}
		sub.inputSeries[idx] = inputSeriesName
		sub.operators[idx] = op
	}

	return sub, nil
}

func (sub *Subscription) getInitialData(
	db storage.Backend,
	start time.Time,
) (*messages.Data, error) {
	result := &messages.Data{}

	for idx, op := range sub.operators {
		var lookback time.Duration
		if wo, ok := op.(series.WindowedOperator); ok {
			lookback = wo.Lookback()
		}

		window, err := db.LoadDataWindow(
			sub.inputSeries[idx],
			start.Add(-lookback),
		)
		if err != nil {
			return nil, errors.Wrap(err, "load data window")
		}

		out := op.ProcessNewValues(window.Values)
		if len(out) == 0 {
			continue
		}

		result.Series = append(result.Series, packSeries(idx, out))
	}

	return result, nil
}

// inputMap maps input series names to indices into sub.operators.
func (sub *Subscription) inputMap() map[string][]int {
	result := map[string][]int{}
	for idx, inName := range sub.inputSeries {
		result[inName] = append(result[inName], idx)
	}
	return result
}

// Run sends the current server time, then catch-up data from storage, then
// live updates until ctx is canceled. msgCh is closed on return.
func (sub *Subscription) Run(
	ctx context.Context,
	db storage.Backend,
	br *broker.Broker[schema.Series],
	msgCh chan *messages.Data,
	now time.Time,
	start time.Time,
) {
	defer close(msgCh)

	send := func(msg *messages.Data) bool {
		select {
		case <-ctx.Done():
			return false
		case msgCh <- msg:
			return true
		}
	}

	if !send(&messages.Data{Now: uint64(now.UnixMilli())}) {
		return
	}

	initialData, err := sub.getInitialData(db, start)
	if err != nil {
		send(&messages.Data{
			Error: errors.Wrap(err, "get initial data").Error(),
		})
		return
	}
	if !send(initialData) {
		return
	}

	sub.produceAllSeries(ctx, br, msgCh)
}

func (sub *Subscription) produceAllSeries(
	ctx context.Context,
	br *broker.Broker[schema.Series],
	outMsg chan *messages.Data,
) {
	msgCh := br.Subscribe()
	defer br.Unsubscribe(msgCh)

	computedMap := sub.inputMap()

	for {
		var msg schema.Series
		select {
		case <-ctx.Done():
			return
		case msg = <-msgCh:
		}

		out, ok := computedMap[msg.SeriesName]
		if !ok {
			continue
		}

		data := &messages.Data{}
		for _, idx := range out {
			processed := sub.operators[idx].ProcessNewValues(msg.Values)
			if len(processed) == 0 {
				continue
			}
			data.Series = append(data.Series, packSeries(idx, processed))
		}

		if len(data.Series) == 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case outMsg <- data:
		}
	}
}

func packSeries(pos int, samples []schema.Sample) messages.Series {
	timestamps := make([]int64, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		timestamps[i] = s.Timestamp.UnixMilli()
		values[i] = s.Value
	}
	return messages.Series{
		Pos:        pos,
		Timestamps: timestamps,
		Values:     values,
	}
}
