// Package stream reads and writes IR streams over io.Reader and io.Writer.
//
// A Reader pulls bytes from its source on demand, transparently decompresses them and
// yields decoded log events, optionally filtered by a query. A Writer encodes events and
// pushes them through an optional compressor.
//
//	r, err := stream.NewReader(file, stream.WithQuery(q))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for ev, err := range r.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(ev.FormattedMessage(loc))
//	}
//
// Neither type closes the io.Reader or io.Writer it was given.
package stream
