package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carecircle-server/internal/models"
	"carecircle-server/internal/triage"
)

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, qos byte, retained bool, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic, qos, retained, payload})
	return nil
}

var at = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

func testPatient() *models.Patient {
	return &models.Patient{
		BaseModel:      models.BaseModel{ID: "p1"},
		Name:           "Asha ",
		CaregiverPhone: "+911234",
		CreatedByID:    "u1",
		Caregivers:     []models.User{{BaseModel: models.BaseModel{ID: "u1"}}, {BaseModel: models.BaseModel{ID: "u2"}}},
	}
}

func TestTriageAlert(t *testing.T) {
	t.Parallel()

	r := triage.NewClassifier(triage.DefaultThresholds()).
		WithClock(func() time.Time { return at }).
		Evaluate(triage.Vitals{PainLevel: 9, Temperature: triage.Fahrenheit(101.2)}, nil)

	a := TriageAlert(testPatient(), r)
	assert.Equal(t, KindTriageReferral, a.Kind)
	assert.Equal(t, "Asha", a.PatientName)
	assert.Equal(t, "severe", a.Severity)
	assert.Equal(t, "consult", a.Status)
	assert.Equal(t, []string{"u1", "u2"}, a.CaregiverIDs)
	assert.Equal(t, at, a.At)
	assert.Contains(t, a.Message, triage.ReasonHighFever)
	assert.Contains(t, a.Message, triage.Advice(triage.Severe))
}

func TestMissedDoseAlert(t *testing.T) {
	t.Parallel()

	a := MissedDoseAlert(testPatient(), &models.Medicine{Name: "Metformin", Dosage: "500mg"}, at)
	assert.Equal(t, KindMissedMedicine, a.Kind)
	assert.Contains(t, a.Message, "missed your scheduled medicine")
	assert.Contains(t, a.Message, "Metformin 500mg")
	assert.Empty(t, a.Severity)
}

func TestMQTTNotifier_PublishesToPatientTopic(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := NewMQTTNotifier(pub, "carecircle", zap.NewNop())

	a := MissedDoseAlert(testPatient(), &models.Medicine{Name: "Metformin"}, at)
	require.NoError(t, n.NotifyCaregivers(context.Background(), a))

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, "carecircle/patients/p1/alerts", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.False(t, msg.retained)

	var decoded Alert
	require.NoError(t, json.Unmarshal(msg.payload, &decoded))
	assert.Equal(t, KindMissedMedicine, decoded.Kind)
	assert.Equal(t, "p1", decoded.PatientID)
}

func TestMQTTNotifier_PublishError(t *testing.T) {
	t.Parallel()

	n := NewMQTTNotifier(&fakePublisher{err: errors.New("broker gone")}, "cc", nil)
	err := n.NotifyCaregivers(context.Background(), Alert{PatientID: "p1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker gone")
}

// pendingToken is a publish the broker never acknowledges.
type pendingToken struct{ done chan struct{} }

func (p pendingToken) Wait() bool { <-p.done; return true }

func (p pendingToken) WaitTimeout(time.Duration) bool { return false }

func (p pendingToken) Done() <-chan struct{} { return p.done }

func (p pendingToken) Error() error { return nil }

type unackedClient struct {
	mqtt.Client
	token pendingToken
}

func (u unackedClient) Publish(string, byte, bool, interface{}) mqtt.Token { return u.token }

func TestClient_PublishTimesOutWithoutAck(t *testing.T) {
	t.Parallel()

	c := &Client{
		client:  unackedClient{token: pendingToken{done: make(chan struct{})}},
		timeout: 20 * time.Millisecond,
	}
	start := time.Now()
	err := c.Publish(context.Background(), "cc/patients/p1/alerts", alertQoS, false, []byte("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNop(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Nop{}.NotifyCaregivers(context.Background(), Alert{}))
}
