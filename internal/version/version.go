package version

// Version is the release version, overridden at build time with -ldflags "-X ...version.Version=..."
var Version = "0.3.0"
