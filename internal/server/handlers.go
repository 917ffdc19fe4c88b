package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/echoid/engine/internal/fingerprint"
	"github.com/echoid/engine/internal/index"
	"github.com/echoid/engine/internal/metrics"
	"github.com/echoid/engine/internal/recognizer"
)

// indexRequest and identifyRequest both carry raw little-endian
// float32 mono PCM at params.Fs in the request body; fid is passed as
// a query parameter since the body is pure audio, not JSON.

type matchResponse struct {
	FID        uint32  `json:"fid"`
	Class      string  `json:"class"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	CuePoint   float64 `json:"cue_point_seconds"`
}

// handleIndex fingerprints and indexes one recording's full-length PCM
// in a single request. Bulk ingestion of many recordings at once goes
// through internal/ingest.BulkIndexer instead (see cmd/echoid's index
// subcommand); this endpoint is for indexing one recording at a time
// against a running server.
func (s *Server) handleIndex(c *gin.Context) {
	fid, err := strconv.ParseUint(c.Query("fid"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid fid query parameter"})
		return
	}

	samples, err := readPCM(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fp := fingerprint.New(s.log)
	lfs, err := fp.Process(samples, true)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	qlfs := make([]index.QLF, len(lfs))
	for i, lf := range lfs {
		word, dist := s.cb.Quantize(lf.D)
		qlfs[i] = index.QLF{T: lf.T, F: uint16(lf.F), W: uint8(word), E: uint8(dist)}
	}

	ix := index.New(s.store, index.Config{XSCALE: s.cfg.RecognizerCfg.XScale, CacheLimitMB: 64}, s.log)
	if err := ix.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(qlfs) > 0 {
		if err := ix.IndexQLFs(uint32(fid), qlfs); err != nil {
			_ = ix.End(false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if err := ix.End(true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.Manager().FingerprintsIndexed.Inc()
	c.JSON(http.StatusOK, gin.H{"fid": fid, "lfs_indexed": len(lfs)})
}

// handleIdentify runs one-shot identification over a single request's
// PCM body: the payload is fed to a fresh Recognizer (whose Identify
// keeps at most the first two seconds of it) and flushed immediately,
// so there is no cross-request session state. Streaming
// identification over many short snippets uses the WebSocket endpoint
// instead.
func (s *Server) handleIdentify(c *gin.Context) {
	samples, err := readPCM(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := recognizer.New(s.store, s.cb, s.cfg.RecognizerCfg, s.log)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if _, err := r.Identify(samples); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := r.Flush(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	writeResults(c, r.Results())
}

func writeResults(c *gin.Context, matches []recognizer.Match) {
	if matches == nil {
		c.JSON(http.StatusOK, gin.H{"decision": "pending", "matches": nil})
		return
	}
	resp := make([]matchResponse, len(matches))
	for i, m := range matches {
		resp[i] = matchResponse{
			FID:        m.FID,
			Class:      m.Class.String(),
			Score:      m.Score,
			Confidence: m.Confidence,
			CuePoint:   m.CuePoint,
		}
	}
	decision := "unidentified"
	if len(matches) > 0 {
		decision = strings.ToLower(matches[0].Class.String())
	}
	m := metrics.Manager()
	m.IdentifyOutcomes.WithLabelValues(decision).Inc()
	c.JSON(http.StatusOK, gin.H{"decision": decision, "matches": resp})
}

// readPCM decodes a request body of raw little-endian float32 mono
// samples, the wire format both /index and /identify expect (callers
// decode WAV/ffmpeg upstream via internal/ingest before sending).
func readPCM(r io.Reader) ([]float32, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeF32LEFrame(raw), nil
}
