// Package discovery finds running bridges on the local network via mDNS.
//
// A bridge with its HTTP server enabled registers a "_ookbridge._tcp"
// service whose TXT records carry the bridge's source id and version. The
// Scanner browses for that service type; "ookbridge scan" lists the results
// and "ookbridge watch" connects to the first one when no URL is given.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 3 * time.Second
//	bridges, err := scanner.Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, b := range bridges {
//	    fmt.Println(b.SourceID, b.FeedURL())
//	}
//
// # Network Requirements
//
// mDNS uses multicast UDP on port 5353. Scans return nothing across subnets
// or when a firewall blocks multicast; pass the feed URL explicitly then.
package discovery
