package clientstats

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/prom2json"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "clientstats")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Scraper is an interface type allowing for different scrapers
// to be used with the same process.
type Scraper interface {
	Scrape() (io.Reader, error)
}

type slasherScraper struct {
	url     string
	tripper http.RoundTripper
}

func (sc *slasherScraper) Scrape() (io.Reader, error) {
	log.Debugf("Scraping slasher at %s", sc.url)
	pf, err := scrapeProm(sc.url, sc.tripper)
	if err != nil {
		return nil, err
	}

	ss := populateSlasherStats(pf)

	b, err := json.Marshal(ss)
	return bytes.NewBuffer(b), err
}

// NewSlasherScraper constructs a Scraper capable of scraping the
// prometheus endpoint of a slasher process.
func NewSlasherScraper(promExpoURL string) Scraper {
	return &slasherScraper{
		url: promExpoURL,
	}
}

// note on tripper -- under the hood FetchMetricFamilies constructs an http.Client,
// which, if transport is nil, will just use the DefaultTransport, so we
// really only bother specifying the transport in tests, otherwise we let
// the zero-value (which is nil) flow through so that the default transport
// will be used.
func scrapeProm(url string, tripper http.RoundTripper) (metricMap, error) {
	mfChan := make(chan *dto.MetricFamily)
	errChan := make(chan error, 1)
	go func() {
		// FetchMetricFamilies closes mfChan when it returns.
		errChan <- prom2json.FetchMetricFamilies(url, mfChan, tripper)
	}()
	result := make(metricMap)
	for fam := range mfChan {
		result[fam.GetName()] = fam
	}
	if err := <-errChan; err != nil {
		return result, errors.Wrapf(err, "could not scrape %s", url)
	}
	return result, nil
}

type metricMap map[string]*dto.MetricFamily

func (mm metricMap) getFamily(name string) (*dto.MetricFamily, error) {
	f, ok := mm[name]
	if !ok || len(f.Metric) == 0 {
		return nil, errors.Errorf("scraper did not find metric family %s", name)
	}
	return f, nil
}

// value returns the sum of every sample of a counter or gauge family.
func (mm metricMap) value(name string) int64 {
	f, err := mm.getFamily(name)
	if err != nil {
		log.WithError(err).Debugf("Failed to get %s", name)
		return 0
	}
	var total float64
	for _, m := range f.Metric {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		}
	}
	// float64->int64: truncates fractional values
	return int64(total)
}

var now = time.Now // var hook for tests to overwrite
var nanosPerMilli = int64(time.Millisecond) / int64(time.Nanosecond)

func populateAPIMessage(processName string) APIMessage {
	return APIMessage{
		Timestamp:   now().UnixNano() / nanosPerMilli,
		APIVersion:  APIVersion,
		ProcessName: processName,
	}
}

func populateCommonStats(pf metricMap) CommonStats {
	cs := CommonStats{}
	cs.ClientName = ClientName
	cs.CPUProcessSecondsTotal = pf.value("process_cpu_seconds_total")
	cs.MemoryProcessBytes = pf.value("process_resident_memory_bytes")

	f, err := pf.getFamily("slasher_version")
	if err != nil {
		log.WithError(err).Debug("Failed to get slasher_version")
		return cs
	}
	for _, l := range f.Metric[0].GetLabel() {
		switch l.GetName() {
		case "version":
			cs.ClientVersion = l.GetValue()
		case "buildDate":
			buildDate, err := strconv.Atoi(l.GetValue())
			if err != nil {
				log.WithError(err).Debug("Failed to retrieve buildDate label from the slasher_version metric")
				continue
			}
			cs.ClientBuild = int64(buildDate)
		}
	}
	return cs
}

func populateSlasherStats(pf metricMap) SlasherStats {
	ss := SlasherStats{}
	ss.CommonStats = populateCommonStats(pf)
	ss.APIMessage = populateAPIMessage(SlasherProcessName)

	ss.SlashesTotal = pf.value("slasher_slashes_total")
	ss.PenaltyAppliedTotal = pf.value("slasher_penalty_applied_total")
	ss.IncentivesVersion = pf.value("slasher_incentives_version")
	ss.RecordedEpochsTotal = pf.value("directory_recorded_epochs_total")
	ss.InvalidSignerProofs = pf.value("directory_invalid_signer_proofs_total")
	ss.LedgerReplayedSlashes = pf.value("lockedgold_replayed_slashes_total")

	ss.RejectedEvidence = make(map[string]int64)
	if f, err := pf.getFamily("slasher_rejected_evidence_total"); err == nil {
		for _, m := range f.Metric {
			for _, l := range m.GetLabel() {
				if l.GetName() == "reason" {
					v := int64(m.Counter.GetValue())
					ss.RejectedEvidence[l.GetValue()] += v
					ss.RejectedEvidenceTotal += v
				}
			}
		}
	}

	if f, err := pf.getFamily("slasher_log_entries_total"); err == nil {
		for _, m := range f.Metric {
			for _, l := range m.GetLabel() {
				if l.GetName() == "level" && l.GetValue() == "error" {
					ss.LogErrorsTotal += int64(m.Counter.GetValue())
				}
			}
		}
	}
	return ss
}
