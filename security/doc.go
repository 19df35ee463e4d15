// Package security builds the client TLS configuration for login and
// stream requests to backends behind private CAs or mutual TLS.
//
//	session:
//	  tls:
//	    ca_file: /etc/sse/ca.pem
//	    cert_file: /etc/sse/client.pem
//	    key_file: /etc/sse/client-key.pem
package security
