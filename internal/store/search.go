package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/rchart/internal/model"
	"github.com/roach88/rchart/internal/search"
)

// searchSource is the ranked query for one indexed entity type. Queries
// take (match, [patient id], limit) and alias the source row as src so a
// patient scope can be appended.
type searchSource struct {
	typ   string
	query string
}

const snippetArgs = `'<mark>', '</mark>', '...', 12`

var searchSources = []searchSource{
	{search.TypePatient, `
		SELECT src.id, src.id, src.first_name || ' ' || src.last_name, 'DOB: ' || src.dob,
			snippet(patients_fts, -1, ` + snippetArgs + `), bm25(patients_fts)
		FROM patients_fts
		JOIN patients src ON src.id = patients_fts.rowid
		WHERE patients_fts MATCH ?`},
	{search.TypeEncounter, `
		SELECT src.id, src.patient_id, src.encounter_type || ' - ' || src.encounter_date,
			p.first_name || ' ' || p.last_name,
			snippet(encounters_fts, -1, ` + snippetArgs + `), bm25(encounters_fts)
		FROM encounters_fts
		JOIN encounters src ON src.id = encounters_fts.rowid
		JOIN patients p ON p.id = src.patient_id
		WHERE encounters_fts MATCH ?`},
	{search.TypeDiagnosis, `
		SELECT src.id, src.patient_id, src.name || COALESCE(' (' || src.icd_code || ')', ''),
			p.first_name || ' ' || p.last_name,
			snippet(diagnoses_fts, -1, ` + snippetArgs + `), bm25(diagnoses_fts)
		FROM diagnoses_fts
		JOIN diagnoses src ON src.id = diagnoses_fts.rowid
		JOIN patients p ON p.id = src.patient_id
		WHERE diagnoses_fts MATCH ?`},
	{search.TypeMedication, `
		SELECT src.id, src.patient_id, src.name || COALESCE(' ' || src.dose, ''),
			p.first_name || ' ' || p.last_name,
			snippet(medications_fts, -1, ` + snippetArgs + `), bm25(medications_fts)
		FROM medications_fts
		JOIN medications src ON src.id = medications_fts.rowid
		JOIN patients p ON p.id = src.patient_id
		WHERE medications_fts MATCH ?`},
	{search.TypeLab, `
		SELECT src.id, src.patient_id, src.name || ': ' || src.value || COALESCE(' ' || src.unit, ''),
			p.first_name || ' ' || p.last_name || ' - ' || src.recorded_at,
			snippet(labs_fts, -1, ` + snippetArgs + `), bm25(labs_fts)
		FROM labs_fts
		JOIN labs src ON src.id = labs_fts.rowid
		JOIN patients p ON p.id = src.patient_id
		WHERE labs_fts MATCH ?`},
}

func scanSearchResult(typ string) func(scanner) (model.SearchResult, error) {
	return func(sc scanner) (model.SearchResult, error) {
		r := model.SearchResult{ResultType: typ}
		var patientID sql.Null[int64]
		var subtitle, snippet sql.Null[string]
		if err := sc.Scan(&r.ID, &patientID, &r.Title, &subtitle, &snippet, &r.Rank); err != nil {
			return r, fmt.Errorf("scan %s result: %w", typ, err)
		}
		r.PatientID = ptr(patientID)
		r.Subtitle = ptr(subtitle)
		r.Snippet = ptr(snippet)
		return r, nil
	}
}

// GlobalSearch ranks matches across every indexed entity type. Each type
// contributes at most limit hits before the merged list is sorted by rank
// and truncated to limit. A non-positive limit means the default of 20. An
// empty query returns no results.
func (s *Store) GlobalSearch(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	return s.runSearch(ctx, "global_search", query, nil, search.Limit(limit, search.DefaultLimit))
}

// SearchPatientData is GlobalSearch restricted to one patient's clinical
// rows. Patient identity matches are excluded since the patient is the scope.
func (s *Store) SearchPatientData(ctx context.Context, patientID int64, query string, limit int) ([]model.SearchResult, error) {
	return s.runSearch(ctx, "search_patient_data", query, &patientID, search.Limit(limit, search.DefaultLimit))
}

func (s *Store) runSearch(ctx context.Context, op, query string, patientID *int64, limit int) ([]model.SearchResult, error) {
	match, ok := search.Compile(query)
	if !ok {
		return []model.SearchResult{}, nil
	}
	return call(ctx, s, op, func(q querier) ([]model.SearchResult, error) {
		groups := make([][]model.SearchResult, 0, len(searchSources))
		for _, src := range searchSources {
			if patientID != nil && src.typ == search.TypePatient {
				continue
			}
			hits, err := s.searchEntity(ctx, q, src, match, patientID, limit)
			if err != nil {
				return nil, err
			}
			groups = append(groups, hits)
		}
		return search.Merge(limit, groups...), nil
	})
}

// searchEntity runs one entity query. A malformed MATCH drops only this
// entity type from the results; any other failure aborts the search.
func (s *Store) searchEntity(ctx context.Context, q querier, src searchSource, match string, patientID *int64, limit int) ([]model.SearchResult, error) {
	var b strings.Builder
	b.WriteString(src.query)
	args := []any{match}
	if patientID != nil {
		b.WriteString(` AND src.patient_id = ?`)
		args = append(args, *patientID)
	}
	b.WriteString(` ORDER BY 6, src.id LIMIT ?`)
	args = append(args, limit)

	hits, err := queryAll(ctx, q, scanSearchResult(src.typ), b.String(), args...)
	if err != nil {
		if isQueryError(err) {
			s.log.Warn().Err(err).Str("entity", src.typ).Msg("search degraded")
			s.metrics.SearchDegraded(src.typ)
			return []model.SearchResult{}, nil
		}
		return nil, fmt.Errorf("search %s: %w", src.typ, err)
	}
	return hits, nil
}

// QuickSearchPatients filters the patient list. An empty query returns every
// patient in list order with no limit; otherwise matching patients are
// returned best match first, at most limit (default 50).
func (s *Store) QuickSearchPatients(ctx context.Context, query string, limit int) ([]model.Patient, error) {
	match, ok := search.Compile(query)
	if !ok {
		return s.ListPatients(ctx)
	}
	limit = search.Limit(limit, search.DefaultQuickLimit)
	return call(ctx, s, "quick_search_patients", func(q querier) ([]model.Patient, error) {
		patients, err := queryAll(ctx, q, scanPatient, `
			SELECT p.id, p.first_name, p.last_name, p.dob, p.sex, p.gender, p.address, p.phone, p.email,
				p.photo_url, p.ai_summary, p.preferred_pharmacy, p.insurance_provider,
				p.insurance_policy_number, p.insurance_group_number
			FROM patients_fts
			JOIN patients p ON p.id = patients_fts.rowid
			WHERE patients_fts MATCH ?
			ORDER BY bm25(patients_fts), p.id
			LIMIT ?
		`, match, limit)
		if err != nil && isQueryError(err) {
			s.log.Warn().Err(err).Str("entity", search.TypePatient).Msg("search degraded")
			s.metrics.SearchDegraded(search.TypePatient)
			return []model.Patient{}, nil
		}
		return patients, err
	})
}

// rebuildStatements clear and repopulate every shadow table.
var rebuildStatements = []string{
	`DELETE FROM patients_fts`,
	`INSERT INTO patients_fts(rowid, first_name, last_name, dob, phone, email, ai_summary)
		SELECT id, first_name, last_name, dob, phone, email, ai_summary FROM patients`,
	`DELETE FROM encounters_fts`,
	`INSERT INTO encounters_fts(rowid, encounter_type, chief_complaint, summary, note_content, provider)
		SELECT id, encounter_type, chief_complaint, summary, note_content, provider FROM encounters`,
	`DELETE FROM diagnoses_fts`,
	`INSERT INTO diagnoses_fts(rowid, name, icd_code, category)
		SELECT id, name, icd_code, category FROM diagnoses`,
	`DELETE FROM medications_fts`,
	`INSERT INTO medications_fts(rowid, name, dose, frequency)
		SELECT id, name, dose, frequency FROM medications`,
	`DELETE FROM labs_fts`,
	`INSERT INTO labs_fts(rowid, name, unit) SELECT id, name, unit FROM labs`,
}

func (s *Store) rebuild(ctx context.Context, q querier) error {
	start := time.Now()
	for _, stmt := range rebuildStatements {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	d := time.Since(start)
	s.metrics.IndexRebuilt(d)
	s.log.Debug().Dur("duration", d).Msg("search index rebuilt")
	return nil
}

// RebuildSearchIndex clears every shadow table and repopulates it from the
// source tables in one transaction.
func (s *Store) RebuildSearchIndex(ctx context.Context) error {
	return execTx(ctx, s, "rebuild_search_index", func(q querier) error {
		return s.rebuild(ctx, q)
	})
}
