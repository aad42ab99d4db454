package app

const ServiceName = "school-service"

// Set via -ldflags at build time:
//
//	go build -ldflags="-X 'school-service/internal/app.Version=1.0.0' -X 'school-service/internal/app.GitCommit=$(git rev-parse --short HEAD)'" ./cmd/server
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
