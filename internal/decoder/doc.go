// Package decoder runs the receive loop: one sync search, then one frame
// capture and decode for whichever protocol was detected.
//
// A Decoder owns a pulse.Source and is driven either one cycle at a time
// with Cycle, or continuously with Run:
//
//	dec := decoder.New(src, decoder.DefaultConfig(), metrics, hub)
//	if err := dec.Run(ctx); err != nil {
//	    return err
//	}
//
// Every cycle produces an Outcome, which is handed to each Observer in
// registration order. Observers run on the decode goroutine and must not
// block; the websocket hub and the publisher both hand work off quickly.
//
// Timeouts, structural rejections and integrity failures are not errors:
// they are recorded on the Outcome and counted in Stats. Run only returns
// an error when the pulse source fails.
package decoder
