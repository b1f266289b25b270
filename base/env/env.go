package env

import (
	"os"
)

// PodName is the k8s pod running the engine, the host name outside k8s
func PodName() string {
	if name := os.Getenv("PODNAME"); name != "" {
		return name
	}
	name, _ := os.Hostname()
	return name
}
