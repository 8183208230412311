// Package jingle implements the XEP-0166 Jingle session core: the
// per-call state machine, stanza correlation, and XML value objects
// for negotiating RTP media sessions (XEP-0167) over ICE-UDP
// (XEP-0176) or Raw-UDP (XEP-0177) transports, with RTP info
// (XEP-0262), DTMF (XEP-0181), and call transfer (XEP-0251) support.
//
// The package does not touch the XMPP stream itself, the media plane,
// or session persistence; it consumes a Stream interface capable of
// sending an XML element and reports JingleEvents back to the caller
// via Session.GetEvent. See plugins/jingle for the glue that wires a
// *Engine into this module's plugin and mux machinery.
package jingle
