// Package discovery advertises the bridge's server endpoint over mDNS.
//
// The bridge registers a "_opcua-tcp._tcp" service instance so local
// discovery servers and engineering tools can find the endpoint
// without manual configuration. TXT records carry the namespace URI
// and the size of the bridged catalog.
//
// Advertisement is optional and off by default; the wire protocol
// itself belongs to the external server framework.
package discovery
