package onto

import "ontokern/internal/model"

// OperationRecord is one chronological entry in a session's history.
type OperationRecord struct {
	Operation  string `json:"operation"`
	GenomeID   string `json:"genome_id"`
	Generation int    `json:"generation"`
}

// EvolutionSession is caller-owned bookkeeping for a run: a chronological
// operation history plus an ancestry graph keyed by genome id. It replaces
// process-global history state; attach one to an Engine to record, call
// Reset to start over.
type EvolutionSession struct {
	History []OperationRecord
	Lineage map[string]model.LineageRecord
}

func NewSession() *EvolutionSession {
	return &EvolutionSession{
		Lineage: make(map[string]model.LineageRecord),
	}
}

// Record appends one operation to the history and, for genomes not yet
// seen, one edge set to the ancestry graph.
func (s *EvolutionSession) Record(operation string, g model.Genome) {
	if s == nil {
		return
	}
	s.History = append(s.History, OperationRecord{
		Operation:  operation,
		GenomeID:   g.ID,
		Generation: g.Generation,
	})
	if s.Lineage == nil {
		s.Lineage = make(map[string]model.LineageRecord)
	}
	if _, seen := s.Lineage[g.ID]; !seen {
		s.Lineage[g.ID] = model.LineageRecord{
			GenomeID:   g.ID,
			ParentIDs:  append([]string(nil), g.Lineage...),
			Generation: g.Generation,
			Operation:  operation,
		}
	}
}

// Ancestry walks the lineage graph from a genome back to its roots,
// breadth-first, returning every recorded ancestor edge including the
// genome's own.
func (s *EvolutionSession) Ancestry(genomeID string) []model.LineageRecord {
	if s == nil || s.Lineage == nil {
		return nil
	}

	var out []model.LineageRecord
	seen := make(map[string]bool)
	queue := []string{genomeID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		record, ok := s.Lineage[id]
		if !ok {
			continue
		}
		out = append(out, record)
		queue = append(queue, record.ParentIDs...)
	}
	return out
}

// Reset discards all recorded history and lineage.
func (s *EvolutionSession) Reset() {
	if s == nil {
		return
	}
	s.History = nil
	s.Lineage = make(map[string]model.LineageRecord)
}
