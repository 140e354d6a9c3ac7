package report

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"dengue-triage/internal/encounter"
	"dengue-triage/internal/triage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTelegram struct {
	sent     int
	caption  string
	messages []string
}

func (f *fakeTelegram) Enabled() bool { return true }

func (f *fakeTelegram) SendMessage(_ context.Context, _ int64, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeTelegram) SendDocument(_ context.Context, _ int64, _ []byte, _, caption string) error {
	f.sent++
	f.caption = caption
	return nil
}

type fakeStore struct {
	names []string
}

func (f *fakeStore) Upload(_ context.Context, name string, _ []byte, _ string) (string, error) {
	f.names = append(f.names, name)
	return "bucket/" + name, nil
}

func record(class triage.Classification, emergency bool) encounter.Record {
	return encounter.Record{
		SessionID: "s-1",
		Result: triage.FinalResult{
			SessionID:      "s-1",
			Classification: class,
			Color:          class.Color(),
			Conduct:        class.Conduct(),
			Score:          7,
			Confidence:     0.9,
			Reason:         triage.ReasonConfident,
			Emergency:      emergency,
			Answers: []triage.AnsweredQuestion{
				{QuestionID: "febre_presente", Text: "Tem febre?", Value: triage.Bool(true)},
				{QuestionID: "plaquetas", Value: triage.Number(90000)},
			},
		},
		Recommendation: "Hidratação oral e retorno em 24h.",
		CreatedAt:      time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestShouldNotify(t *testing.T) {
	s := NewService(nil, nil, 1, triage.ClassAlto, "", zap.NewNop())

	tests := []struct {
		class     triage.Classification
		emergency bool
		want      bool
	}{
		{triage.ClassBaixo, false, false},
		{triage.ClassMedio, false, false},
		{triage.ClassAlto, false, true},
		{triage.ClassCritico, false, true},
		{triage.ClassBaixo, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			assert.Equal(t, tt.want, s.ShouldNotify(record(tt.class, tt.emergency).Result))
		})
	}
}

func TestSections(t *testing.T) {
	r := record(triage.ClassAlto, true)
	r.Abstention = triage.Abstain{Abstain: true, Reasons: []string{"confiança baixa"}}

	secs := Sections(r)
	require.Len(t, secs, 4)
	assert.Contains(t, secs[0].Lines[0], "01.03.2024 10:30")

	risk := strings.Join(secs[1].Lines, "\n")
	assert.Contains(t, risk, "Alto (laranja) - score 7.0")
	assert.Contains(t, risk, "SINAL DE GRAVIDADE PRESENTE")
	assert.Contains(t, risk, "Avaliação presencial recomendada: confiança baixa")

	assert.Equal(t, []string{"- Tem febre?: sim", "- plaquetas: 90000"}, secs[2].Lines)
	assert.Equal(t, "Hidratação oral e retorno em 24h.", secs[3].Lines[0])
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "Triagem dengue: Alto (laranja), score 7.0, confiança 90%", Caption(record(triage.ClassAlto, false)))
	assert.True(t, strings.HasPrefix(Caption(record(triage.ClassBaixo, true)), "EMERGÊNCIA"))
}

func TestSendDoctorReportSkipsBelowThreshold(t *testing.T) {
	tg := &fakeTelegram{}
	s := NewService(tg, nil, 1, triage.ClassAlto, "", zap.NewNop())

	key, err := s.SendDoctorReport(context.Background(), record(triage.ClassMedio, false))
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Zero(t, tg.sent)
	assert.Empty(t, tg.messages)
}

func TestAlert(t *testing.T) {
	r := record(triage.ClassCritico, true)
	r.PatientRef = "P-7"
	r.Result.CriticalSigns = []string{"sangramento_mucosa"}
	assert.Equal(t, "EMERGÊNCIA na triagem s-1: Crítico, paciente P-7. Sinais: sangramento_mucosa. Relatório a seguir.", Alert(r))
}

func TestSendDoctorReportAlertsEmergencyBeforeRender(t *testing.T) {
	tg := &fakeTelegram{}
	s := NewService(tg, nil, 99, triage.ClassAlto, "/nonexistent/font.ttf", zap.NewNop())
	s.fonts = []string{"/nonexistent/font.ttf"}

	_, err := s.SendDoctorReport(context.Background(), record(triage.ClassCritico, true))
	require.Error(t, err, "render fails without a font")
	require.Len(t, tg.messages, 1)
	assert.Contains(t, tg.messages[0], "EMERGÊNCIA")
	assert.Zero(t, tg.sent)

	tg = &fakeTelegram{}
	s = NewService(tg, nil, 99, triage.ClassAlto, "/nonexistent/font.ttf", zap.NewNop())
	s.fonts = []string{"/nonexistent/font.ttf"}
	_, err = s.SendDoctorReport(context.Background(), record(triage.ClassCritico, false))
	require.Error(t, err)
	assert.Empty(t, tg.messages, "no alert without an emergency")
}

func TestSendDoctorReport(t *testing.T) {
	font := os.Getenv("TRIAGE_FONT_PATH")
	s := NewService(nil, nil, 0, triage.ClassAlto, font, zap.NewNop())
	if _, err := s.Render(record(triage.ClassAlto, false)); err != nil {
		t.Skipf("no usable font: %v", err)
	}

	tg := &fakeTelegram{}
	store := &fakeStore{}
	s = NewService(tg, store, 99, triage.ClassAlto, font, zap.NewNop())

	key, err := s.SendDoctorReport(context.Background(), record(triage.ClassCritico, false))
	require.NoError(t, err)
	assert.Equal(t, "bucket/reports/triagem_s-1.pdf", key)
	assert.Equal(t, 1, tg.sent)
	assert.Contains(t, tg.caption, "Crítico")
	assert.Empty(t, tg.messages)

	key, err = s.SendDoctorReport(context.Background(), record(triage.ClassBaixo, false))
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.Equal(t, 1, tg.sent)
	assert.Len(t, store.names, 2)
}
