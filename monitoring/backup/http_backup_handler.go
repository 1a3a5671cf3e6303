// Package backup serves a webhook that snapshots the node's databases.
package backup

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Exporter defines a backup exporter methods.
type Exporter interface {
	Backup(ctx context.Context, outputDir string) error
}

// Handler for accepting requests to initiate a new backup of every exporter.
// An empty outputDir lets each exporter pick its own backups directory.
func Handler(outputDir string, exporters ...Exporter) func(http.ResponseWriter, *http.Request) {
	log := logrus.WithField("prefix", "db")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		log.Debug("Creating database backup from HTTP webhook")

		for _, bk := range exporters {
			if err := bk.Backup(context.Background(), outputDir); err != nil {
				log.WithError(err).Error("Failed to create backup")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, err := fmt.Fprint(w, "OK")
		if err != nil {
			log.WithError(err).Error("Failed to write OK")
		}
	}
}
