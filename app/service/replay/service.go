package replay

import (
	"encoding/json"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"elizabot/app/config"
	"elizabot/app/service/conversation"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// Record is one stored question/answer trial.
type Record struct {
	Question        string                 `json:"question"`
	Answer          string                 `json:"answer"`
	ThinkingCues    []string               `json:"thinking_cues,omitempty"`
	Decision        *conversation.Decision `json:"decision,omitempty"`
	FinalConfidence string                 `json:"final_confidence,omitempty"`
}

var indexAliasRe = regexp.MustCompile(`^q(?:uestion)?\s*0*([0-9]+)$`)

// Service serves previously recorded answers. The record set is read-only
// after load.
type Service struct {
	records   []Record
	normIndex map[string]int
	threshold float64
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{
		normIndex: make(map[string]int),
		threshold: cfg.Replay.MatchThreshold,
	}

	// A missing or broken store is not fatal, the cache just stays empty.
	if err := s.load(cfg.Replay.Path); err != nil {
		slog.Warn("Failed to load replay store, starting empty",
			"path", cfg.Replay.Path,
			"error", err)
	}

	slog.Info("Replay store loaded", "records", len(s.records))

	return s, nil
}

func (s *Service) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	records, err := decodeRecords(data)
	if err != nil {
		return err
	}

	s.records = records

	for i, rec := range s.records {
		norm := normalizeText(rec.Question)
		if _, exists := s.normIndex[norm]; norm != "" && !exists {
			s.normIndex[norm] = i
		}
	}

	return nil
}

// decodeRecords accepts the shapes the store has shipped as over time: a
// bare list, {"records": [...]}, {"trials": [...]}, or a map keyed by
// question.
func decodeRecords(data []byte) ([]Record, error) {
	var list []Record
	if err := json.Unmarshal(data, &list); err == nil {
		return sanitizeRecords(list), nil
	}

	var wrapper struct {
		Records []Record `json:"records"`
		Trials  []Record `json:"trials"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil {
		if len(wrapper.Records) > 0 {
			return sanitizeRecords(wrapper.Records), nil
		}
		if len(wrapper.Trials) > 0 {
			return sanitizeRecords(wrapper.Trials), nil
		}
	}

	var keyed map[string]Record
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, err
	}

	// JSON objects carry no order, sort keys so load order is deterministic.
	keys := make([]string, 0, len(keyed))
	for key := range keyed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list = list[:0]
	for _, key := range keys {
		rec := keyed[key]
		if rec.Question == "" {
			rec.Question = key
		}
		list = append(list, rec)
	}

	return sanitizeRecords(list), nil
}

func sanitizeRecords(records []Record) []Record {
	sanitized := make([]Record, 0, len(records))

	for _, rec := range records {
		rec.Question = strings.TrimSpace(rec.Question)
		if rec.Question == "" {
			continue
		}

		rec.Answer = strings.TrimSpace(rec.Answer)
		rec.ThinkingCues = pie.Filter(
			pie.Map(rec.ThinkingCues, strings.TrimSpace),
			func(cue string) bool { return cue != "" },
		)

		rec.FinalConfidence = strings.TrimSpace(rec.FinalConfidence)
		if rec.FinalConfidence == "" && rec.Decision != nil {
			rec.FinalConfidence = strings.TrimSpace(rec.Decision.Confidence)
		}

		sanitized = append(sanitized, rec)
	}

	return sanitized
}

// Len reports the number of loaded records.
func (s *Service) Len() int {
	return len(s.records)
}

// Lookup returns the best-matching stored record and its similarity score,
// or false when nothing clears the threshold. It is a pure function over the
// loaded record set.
func (s *Service) Lookup(question string) (*Record, float64, bool) {
	key := strings.TrimSpace(question)
	if key == "" || len(s.records) == 0 {
		return nil, 0, false
	}

	// Index aliases like "question1" or "q2" pick the nth stored record.
	if rec := s.resolveIndexAlias(key); rec != nil {
		return rec, 1.0, true
	}

	norm := normalizeText(key)
	if norm == "" {
		return nil, 0, false
	}

	if i, ok := s.normIndex[norm]; ok {
		return s.copyRecord(i), 1.0, true
	}

	bestIndex := -1
	bestScore := 0.0

	for i, rec := range s.records {
		score := Similarity(norm, normalizeText(rec.Question))
		if score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex < 0 || bestScore < s.threshold {
		return nil, bestScore, false
	}

	slog.Debug("Fuzzy matched stored question",
		"question", s.records[bestIndex].Question,
		"score", bestScore)

	return s.copyRecord(bestIndex), bestScore, true
}

func (s *Service) resolveIndexAlias(text string) *Record {
	match := indexAliasRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if match == nil {
		return nil
	}

	idx, err := strconv.Atoi(match[1])
	if err != nil || idx <= 0 || idx > len(s.records) {
		return nil
	}

	return s.copyRecord(idx - 1)
}

func (s *Service) copyRecord(i int) *Record {
	rec := s.records[i]
	rec.ThinkingCues = append([]string(nil), rec.ThinkingCues...)

	if rec.Decision != nil {
		decision := *rec.Decision
		rec.Decision = &decision
	}

	return &rec
}
