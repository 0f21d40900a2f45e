package version

// Version is the build version, overridden at link time via
// -ldflags "-X github.com/masarify/finance-tracker-backend/internal/version.Version=v1.2.3".
var Version = "dev"
