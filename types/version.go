package types

// Version is the canonical host version.
// The CLI --version output and log context both report this constant.
const Version = "0.1.0"

// HostName is the native messaging host name registered with the browser.
const HostName = "com.ccs.host"
