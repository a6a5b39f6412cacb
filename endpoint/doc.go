// Package endpoint converts raw per-finding endpoint text into a canonical,
// comparable representation.
//
// Scanner exports and finding attachments describe affected systems as
// free-form lines mixing bare hosts, host:port entries, and bracketed IPv6
// forms. The parser normalizes those lines into a Set: hosts in first-seen
// order, a deduplicated port set, and the explicit host:port pairs that were
// actually declared. Sets are immutable once built and compare by their pair
// set, which is what downstream equivalence and coverage analysis operates on.
//
// Malformed content never fails a parse. Lines that cannot be classified
// degrade to Warnings attached to the result so one bad line in one finding
// never blocks review of the rest of the scan.
//
// Parsing the same text repeatedly is common during interactive review, so
// the parser accepts an injectable Cache keyed on the exact input text. The
// cache package provides an exact-LRU in-memory implementation and a
// Redis-backed one for shared deployments.
//
// Example usage:
//
//	p := endpoint.NewParser(endpoint.WithCache(cache.NewLRU(256)))
//	set, warns := p.Parse([]string{
//		"10.0.0.5",
//		"10.0.0.1:80",
//		"[2001:db8::1]:443",
//	})
//	for _, w := range warns {
//		log.Printf("line %d: %s", w.Line, w.Reason)
//	}
//	fmt.Println(set.Signature())
package endpoint
