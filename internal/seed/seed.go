package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/rchart/internal/model"
	"github.com/roach88/rchart/internal/store"
)

// Options configure a Seeder. The zero value uses the built-in fixtures,
// the wall clock and no logging.
type Options struct {
	Logger   *zerolog.Logger
	Now      func() time.Time
	Fixtures *Fixtures
}

// Seeder writes demo data through the store's public operations.
type Seeder struct {
	store *store.Store
	fx    *Fixtures
	log   zerolog.Logger
	now   func() time.Time
}

// Result reports what a seeding call did.
type Result struct {
	Created int    `json:"created" yaml:"created"`
	Skipped bool   `json:"skipped" yaml:"skipped"`
	Message string `json:"message" yaml:"message"`
}

// New returns a Seeder for s, loading the built-in fixtures unless
// opts.Fixtures is set.
func New(s *store.Store, opts Options) (*Seeder, error) {
	sd := &Seeder{store: s, fx: opts.Fixtures, log: zerolog.Nop(), now: opts.Now}
	if opts.Logger != nil {
		sd.log = opts.Logger.With().Str("component", "seed").Logger()
	}
	if sd.now == nil {
		sd.now = time.Now
	}
	if sd.fx == nil {
		fx, err := Load()
		if err != nil {
			return nil, err
		}
		sd.fx = fx
	}
	return sd, nil
}

// anchor is the seeding day at midnight UTC. Generated dates count from it.
func (sd *Seeder) anchor() time.Time {
	return sd.now().UTC().Truncate(24 * time.Hour)
}

func skipped(format string, args ...any) Result {
	return Result{Skipped: true, Message: fmt.Sprintf(format, args...)}
}

// atomic runs one seeding step in a single store transaction. The guard that
// decides whether to skip runs inside it too, so a step either writes its
// whole fixture set or nothing, and a failed step is retried in full.
func (sd *Seeder) atomic(ctx context.Context, op string, fn func(st *store.Store) (Result, error)) (Result, error) {
	var res Result
	err := sd.store.Atomic(ctx, op, func(st *store.Store) error {
		var err error
		res, err = fn(st)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	if !res.Skipped {
		sd.log.Info().Str("step", op).Int("created", res.Created).Msg(res.Message)
	}
	return res, nil
}

// SeedTestData creates the demo patients with today's appointments and a
// few inbox messages. It does nothing when any patient exists.
func (sd *Seeder) SeedTestData(ctx context.Context) (Result, error) {
	return sd.atomic(ctx, "seed_test_data", func(st *store.Store) (Result, error) {
		return sd.seedTestData(ctx, st)
	})
}

func (sd *Seeder) seedTestData(ctx context.Context, st *store.Store) (Result, error) {
	n, err := st.CountPatients(ctx)
	if err != nil {
		return Result{}, err
	}
	if n > 0 {
		return skipped("database already has %d patients", n), nil
	}

	ids := make([]int64, len(sd.fx.Patients))
	for i, p := range sd.fx.Patients {
		if ids[i], err = st.CreatePatient(ctx, p); err != nil {
			return Result{}, fmt.Errorf("seed patient %s: %w", p.FullName(), err)
		}
	}

	day := sd.anchor().Format(time.DateOnly)
	for _, a := range sd.fx.Appointments {
		duration := a.Duration
		_, err := st.CreateAppointment(ctx, model.Appointment{
			PatientID:       ids[a.Patient],
			AppointmentTime: day + " " + a.Time,
			DurationMinutes: &duration,
			Reason:          a.Reason,
		})
		if err != nil {
			return Result{}, fmt.Errorf("seed appointment: %w", err)
		}
	}
	for _, m := range sd.fx.Messages {
		msg := model.Message{Subject: m.Subject, Body: m.Body}
		if m.Patient != nil {
			msg.PatientID = &ids[*m.Patient]
		}
		if _, err := st.CreateMessage(ctx, msg); err != nil {
			return Result{}, fmt.Errorf("seed message: %w", err)
		}
	}

	return Result{Created: len(ids), Message: fmt.Sprintf("seeded %d test patients", len(ids))}, nil
}

// SeedUserData creates the demo provider with education, badges and
// default settings. It does nothing when any user exists.
func (sd *Seeder) SeedUserData(ctx context.Context) (Result, error) {
	return sd.atomic(ctx, "seed_user_data", func(st *store.Store) (Result, error) {
		return sd.seedUserData(ctx, st)
	})
}

func (sd *Seeder) seedUserData(ctx context.Context, st *store.Store) (Result, error) {
	u, err := st.CurrentUser(ctx)
	if err != nil {
		return Result{}, err
	}
	if u != nil {
		return skipped("user %s already exists", u.Username), nil
	}

	p := sd.fx.Provider
	uid, err := st.CreateUser(ctx, p.user())
	if err != nil {
		return Result{}, fmt.Errorf("seed user %s: %w", p.Username, err)
	}
	created := 1
	for _, e := range p.Education {
		e.UserID = uid
		if _, err := st.AddEducation(ctx, e); err != nil {
			return Result{}, fmt.Errorf("seed education: %w", err)
		}
		created++
	}
	for _, b := range p.Badges {
		b.UserID = uid
		if _, err := st.AddBadge(ctx, b); err != nil {
			return Result{}, fmt.Errorf("seed badge: %w", err)
		}
		created++
	}
	if _, err := st.GetUserSettings(ctx, uid); err != nil {
		return Result{}, fmt.Errorf("seed settings: %w", err)
	}
	created++

	return Result{Created: created, Message: fmt.Sprintf("seeded provider %s", p.Username)}, nil
}

func hasClinicalData(r *model.PatientRecord) bool {
	return len(r.Diagnoses)+len(r.Medications)+len(r.Vitals)+len(r.Labs)+
		len(r.ClinicalScores)+len(r.Encounters)+len(r.Allergies)+len(r.Vaccinations)+
		len(r.SocialHistory)+len(r.FamilyHistory)+len(r.Todos)+len(r.Goals)+
		len(r.TimelineEvents) > 0
}

// SeedPatientDetail fills one patient's chart. A patient that already has
// clinical data is left alone unless force is set, in which case the
// existing clinical rows are deleted first. Demographics are never touched.
func (sd *Seeder) SeedPatientDetail(ctx context.Context, patientID int64, force bool) (Result, error) {
	return sd.atomic(ctx, "seed_patient_detail", func(st *store.Store) (Result, error) {
		return sd.seedPatientDetail(ctx, st, patientID, force)
	})
}

func (sd *Seeder) seedPatientDetail(ctx context.Context, st *store.Store, patientID int64, force bool) (Result, error) {
	const op = "seed_patient_detail"

	rec, err := st.FullPatientRecord(ctx, patientID)
	if err != nil {
		return Result{}, err
	}
	if rec == nil {
		return Result{}, &store.Error{Kind: store.KindNotFound, Op: op, Err: fmt.Errorf("patient %d does not exist", patientID)}
	}
	if hasClinicalData(rec) {
		if !force {
			return skipped("patient %d already has clinical data", patientID), nil
		}
		if err := st.DeletePatientClinicalData(ctx, patientID); err != nil {
			return Result{}, err
		}
		sd.log.Debug().Int64("patient_id", patientID).Msg("cleared clinical data for reseed")
	}

	w := detailWriter{st: st, fx: sd.fx, patient: rec.Patient, anchor: sd.anchor()}
	if err := w.write(ctx); err != nil {
		return Result{}, fmt.Errorf("seed patient %d: %w", patientID, err)
	}

	return Result{Created: w.created, Message: fmt.Sprintf("seeded detail data for patient %d", patientID)}, nil
}

// SeedPatientLists creates the demo worklists for a user and fills them
// with the demo patients that exist. It does nothing when the user already
// has lists.
func (sd *Seeder) SeedPatientLists(ctx context.Context, userID int64) (Result, error) {
	return sd.atomic(ctx, "seed_patient_lists", func(st *store.Store) (Result, error) {
		return sd.seedPatientLists(ctx, st, userID)
	})
}

func (sd *Seeder) seedPatientLists(ctx context.Context, st *store.Store, userID int64) (Result, error) {
	const op = "seed_patient_lists"

	u, err := st.GetUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if u == nil {
		return Result{}, &store.Error{Kind: store.KindNotFound, Op: op, Err: fmt.Errorf("user %d does not exist", userID)}
	}
	existing, err := st.ListPatientLists(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if len(existing) > 0 {
		return skipped("user %d already has %d patient lists", userID, len(existing)), nil
	}

	patients, err := st.ListPatients(ctx)
	if err != nil {
		return Result{}, err
	}
	byName := make(map[string]int64, len(patients))
	for _, p := range patients {
		if _, ok := byName[p.FullName()]; !ok {
			byName[p.FullName()] = p.ID
		}
	}

	created := 0
	for i, l := range sd.fx.Lists {
		id, err := st.CreatePatientList(ctx, model.PatientList{
			UserID:      userID,
			Name:        l.Name,
			Description: l.Description,
			Color:       l.Color,
			Icon:        l.Icon,
			IsDefault:   l.IsDefault,
			SortOrder:   int64(i),
		})
		if err != nil {
			return Result{}, fmt.Errorf("seed list %q: %w", l.Name, err)
		}
		created++

		if len(l.VisibleColumns) > 0 {
			if err := st.UpdateListColumns(ctx, id, columnsShowing(id, l.VisibleColumns)); err != nil {
				return Result{}, fmt.Errorf("seed list %q columns: %w", l.Name, err)
			}
		}
		for _, m := range l.Members {
			pid, ok := byName[sd.fx.Patients[m].FullName()]
			if !ok {
				continue
			}
			if _, err := st.AddPatientToList(ctx, id, pid, nil); err != nil {
				return Result{}, fmt.Errorf("seed list %q member: %w", l.Name, err)
			}
		}
	}

	return Result{Created: created, Message: fmt.Sprintf("seeded %d patient lists", created)}, nil
}

// columnsShowing is the default column set with only keys visible, shown
// first in the given order.
func columnsShowing(listID int64, keys []string) []model.PatientListColumn {
	order := make(map[string]int, len(keys))
	for i, k := range keys {
		order[k] = i
	}
	cols := model.DefaultColumns(listID)
	next := int64(len(keys))
	for i := range cols {
		if pos, ok := order[cols[i].ColumnKey]; ok {
			cols[i].IsVisible = true
			cols[i].SortOrder = int64(pos)
			continue
		}
		cols[i].IsVisible = false
		cols[i].SortOrder = next
		next++
	}
	return cols
}
