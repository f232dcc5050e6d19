/*
Package transport owns the bound UDP socket that carries OSC traffic
to and from the audio engine and any other registered peers (§4.3). A
single receive worker decodes incoming datagrams and routes contained
messages into named reply queues; concurrent callers send datagrams
directly and, optionally, block waiting on a reply queue for a
correlated response.
*/
package transport
