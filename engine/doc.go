/*
Package engine is the server façade of §4.7: it owns a transport, a timed
dispatch queue, the ID allocators for one client, and the reply-address
registry, and performs the engine handshake (notify/status) on Connect.
It is grounded on ptp/simpleclient.Client's shape — a config-plus-owned-
connections struct with a sendGeneralMsg/handleMsg request/reply
correlation pattern — generalized from PTP's fixed handshake to the
notify/status/sync handshake this engine speaks.
*/
package engine
