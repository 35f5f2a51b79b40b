// Package ir implements the record layer of the IR stream format: tokenizing log messages,
// encoding log events into tagged tokens, and decoding them back incrementally.
//
// # Encoding
//
//	meta, _ := preamble.NewMetadata(time.Now().UnixMilli(), "yyyy-MM-dd HH:mm:ss", "UTC")
//	enc, _ := ir.NewEncoder(meta)
//	_ = enc.EncodeMessage(ts, "connected to 10.0.0.7 in 35.2 ms")
//	_ = enc.Close()
//	data := enc.Take()
//
// # Decoding
//
// A DecoderBuffer accumulates bytes from any source and decodes one record per call. A
// record that is not fully buffered yields StatusNeedMoreData without consuming anything,
// so the caller can Fill more bytes and retry:
//
//	buf := ir.NewDecoderBuffer()
//	for {
//	    ev, status, err := buf.TryDecodeNext()
//	    switch {
//	    case err != nil:
//	        return err // corrupt, the stream is unusable
//	    case status == ir.StatusNeedMoreData:
//	        buf.Fill(nextChunk())
//	    case status == ir.StatusEndOfStream:
//	        return nil
//	    default:
//	        handle(ev)
//	    }
//	}
//
// # Session State
//
// An Encoder and a Decoder each carry the running timestamp and the dictionary of one
// stream. Neither can be reset, cloned or shared between streams: doing so would
// desynchronize timestamp deltas and dictionary ids.
//
// Note: Encoder, Decoder and DecoderBuffer are NOT thread-safe. Each instance belongs to a
// single stream and must be used by a single goroutine at a time.
package ir
