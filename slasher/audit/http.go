package audit

import (
	"net/http"

	"github.com/sealwatch/slasher/network/httputil"
	"github.com/sealwatch/slasher/slasher/rpc"
)

// RecentSlashesHandler serves the records kept by Recent, newest last.
func (s *Service) RecentSlashesHandler(w http.ResponseWriter, _ *http.Request) {
	recent := s.Recent()
	resp := &rpc.SlashRecordsResponse{Data: make([]*rpc.SlashRecordJson, len(recent))}
	for i, r := range recent {
		resp.Data[i] = rpc.SlashRecordFromConsensus(r)
	}
	httputil.WriteJson(w, resp)
}
