package docker

import (
	"fmt"
	"time"
)

// Label key constants for build containers. Every container pybundle
// creates carries these labels, which are the only mechanism used to
// recognize our containers later — interrupted builds can leave strays,
// and `pybundle clean --containers` finds them by label filter.
//
// All keys share the "pybundle." prefix to avoid collisions with labels
// set by other tooling.
const (
	// LabelPrefix is the common prefix for all pybundle labels.
	LabelPrefix = "pybundle."

	// LabelManagedBy identifies containers created by pybundle.
	// Key: "pybundle.managed-by", Value: always "pybundle".
	LabelManagedBy = LabelPrefix + "managed-by"

	// ManagedByValue is the fixed value of LabelManagedBy.
	ManagedByValue = "pybundle"

	// LabelApp stores the application name the container was building.
	LabelApp = LabelPrefix + "app"

	// LabelImage stores the image the build ran in.
	LabelImage = LabelPrefix + "image"

	// LabelCreatedAt stores the RFC3339 timestamp of container creation.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// BuildLabels constructs the label set for a new build container.
func BuildLabels(appName, image string) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelApp:       appName,
		LabelImage:     image,
		LabelCreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// BuildContainer describes one pybundle-labelled container found on the
// daemon, reconstructed entirely from its labels and list entry.
type BuildContainer struct {
	// ID is the Docker container identifier.
	ID string

	// Name is the container name without the API's leading slash.
	Name string

	// App is the application name from the pybundle.app label.
	App string

	// Status is the short Docker state string (running, exited, created).
	Status string

	// CreatedAt is parsed from the pybundle.created-at label.
	// Zero when the label is missing or malformed.
	CreatedAt time.Time
}

// String renders the container for text listings.
func (b *BuildContainer) String() string {
	age := "unknown age"
	if !b.CreatedAt.IsZero() {
		age = fmt.Sprintf("created %s", b.CreatedAt.Format(time.RFC3339))
	}
	return fmt.Sprintf("%s (%s, %s, %s)", b.Name, b.App, b.Status, age)
}

// ParseLabels reconstructs a BuildContainer's metadata fields from a
// label map. Unknown or missing labels leave zero values; a container
// is only considered ours when LabelManagedBy matches.
func ParseLabels(labels map[string]string) (app string, createdAt time.Time, managed bool) {
	if labels[LabelManagedBy] != ManagedByValue {
		return "", time.Time{}, false
	}
	app = labels[LabelApp]
	if raw, ok := labels[LabelCreatedAt]; ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			createdAt = ts
		}
	}
	return app, createdAt, true
}
