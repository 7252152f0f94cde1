package domain

import "time"

// Application is a deployed app at the hosting provider.
type Application struct {
	ID          string
	Name        string
	URL         string
	Tag         string
	Description string
}

// AppStatus is a point-in-time resource snapshot for an application.
type AppStatus struct {
	ID           string
	Name         string
	Status       string
	Running      bool
	MemoryUsedMB int
	MemoryMB     int
	CPUPercent   float64
	Uptime       string
	URL          string
	SampledAt    time.Time
}

// AppLogs holds the most recent log lines of an application.
type AppLogs struct {
	ID    string
	Lines []string
}
