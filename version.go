package txui

// Version is the txui release.
const Version = "0.1.0"
