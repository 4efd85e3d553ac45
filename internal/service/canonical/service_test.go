package canonical

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/errors"
	"github.com/jwalitptl/admin-records/pkg/logger"
	"github.com/jwalitptl/admin-records/pkg/metrics"
)

func newTestService(t *testing.T, cfg Config) (*Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "records", "test")
	return NewService(cfg, logger.Nop(), m), m
}

func TestParseEntity(t *testing.T) {
	for in, want := range map[string]Entity{
		"patient":       EntityPatient,
		"Patients":      EntityPatient,
		" appointments": EntityAppointment,
		"vital":         EntityVitals,
		"STAFF":         EntityStaff,
		"payrolls":      EntityPayroll,
	} {
		got, err := ParseEntity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseEntity("invoice")
	require.Error(t, err)
	assert.Equal(t, errors.ErrBadRequest, errors.Code(err))
}

func TestEveryEntityHasCodec(t *testing.T) {
	for _, e := range Entities {
		_, ok := codecs[e]
		assert.True(t, ok, string(e))
	}
}

func TestCanonicalize(t *testing.T) {
	svc, m := newTestService(t, DefaultConfig())
	ctx := context.Background()

	out, err := svc.Canonicalize(ctx, EntityPatient, model.JSONMap{"_id": "p-1", "name": "Ravi Kumar"})
	require.NoError(t, err)
	p, ok := out.(model.Patient)
	require.True(t, ok)
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "Ravi", p.FirstName)

	_, err = svc.Canonicalize(ctx, EntityPatient, nil)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsCanonicalized.WithLabelValues("patient")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnidentifiedRecords.WithLabelValues("patient")))

	_, err = svc.Canonicalize(ctx, Entity("invoice"), model.JSONMap{})
	assert.Equal(t, errors.ErrBadRequest, errors.Code(err))
}

func TestCanonicalizeBatch_PreservesOrder(t *testing.T) {
	svc, m := newTestService(t, Config{Concurrency: 3, MaxBatch: 100})

	raws := make([]model.JSONMap, 50)
	for i := range raws {
		raws[i] = model.JSONMap{"_id": fmt.Sprintf("s-%02d", i), "name": "Staff Member"}
	}
	raws[7] = model.JSONMap{"name": "No Id"}

	out, err := svc.CanonicalizeBatch(context.Background(), EntityStaff, raws)
	require.NoError(t, err)
	require.Len(t, out, len(raws))

	for i, v := range out {
		s, ok := v.(model.Staff)
		require.True(t, ok)
		if i == 7 {
			assert.Empty(t, s.ID)
			continue
		}
		assert.Equal(t, fmt.Sprintf("s-%02d", i), s.ID)
	}
	assert.Equal(t, 50.0, testutil.ToFloat64(m.RecordsCanonicalized.WithLabelValues("staff")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnidentifiedRecords.WithLabelValues("staff")))
}

func TestCanonicalizeBatch_Empty(t *testing.T) {
	svc, _ := newTestService(t, DefaultConfig())

	out, err := svc.CanonicalizeBatch(context.Background(), EntityPayroll, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCanonicalizeBatch_Cancelled(t *testing.T) {
	svc, m := newTestService(t, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := svc.CanonicalizeBatch(ctx, EntityVitals, []model.JSONMap{{"_id": "v-1"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchFailures.WithLabelValues("vitals", "cancelled")))
}

func TestCanonicalizeBatch_TooLarge(t *testing.T) {
	svc, _ := newTestService(t, Config{Concurrency: 1, MaxBatch: 2})

	_, err := svc.CanonicalizeBatch(context.Background(), EntityPatient, []model.JSONMap{{}, {}, {}})
	assert.Equal(t, errors.ErrBadRequest, errors.Code(err))
}

func TestSerialize(t *testing.T) {
	svc, m := newTestService(t, DefaultConfig())
	ctx := context.Background()

	out, err := svc.Serialize(ctx, EntityAppointment, []byte(`{
		"id": "a-1",
		"clientName": "Ravi Kumar",
		"dateTime": "2025-03-05T09:30:00Z",
		"duration": 45,
		"status": "confirmed"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", out["clientName"])
	assert.Equal(t, "2025-03-05", out["date"])
	assert.Equal(t, "09:30", out["time"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsSerialized.WithLabelValues("appointment")))

	_, err = svc.Serialize(ctx, EntityAppointment, []byte(`{"id": `))
	assert.Equal(t, errors.ErrBadRequest, errors.Code(err))
}

func TestComposeProfile(t *testing.T) {
	svc, m := newTestService(t, DefaultConfig())
	ctx := context.Background()

	profile, err := svc.ComposeProfile(ctx, model.JSONMap{
		"_id":            "u-1",
		"role":           "doctor",
		"firstName":      "Anita",
		"specialization": "Cardiology",
	}, "doctor")
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, profile.Role)
	assert.Equal(t, "Cardiology", profile.Specialization)

	_, err = svc.ComposeProfile(ctx, model.JSONMap{"_id": "u-2", "role": "patient"}, "doctor")
	require.Error(t, err)
	assert.True(t, errors.IsRoleMismatch(err))
	assert.Equal(t, errors.ErrRoleMismatch, errors.Code(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProfileRoleMismatches.WithLabelValues("doctor")))

	_, err = svc.ComposeProfile(ctx, model.JSONMap{"role": "reception"}, "reception")
	assert.Equal(t, errors.ErrBadRequest, errors.Code(err))
}
