package ticker

// publishToDB archives every sample from the broker through the buffered
// database writer.
func (t *Ticker) publishToDB() {
	msgCh := t.broker.Subscribe()
	defer t.broker.Unsubscribe(msgCh)

	for msg := range msgCh {
		for _, v := range msg.Values {
			t.writer.Insert(msg.SeriesName, v)
		}
	}
}
