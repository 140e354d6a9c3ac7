package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"dengue-triage/internal/encounter"
	"dengue-triage/internal/platform/storage"
	"dengue-triage/internal/triage"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"
)

type TelegramClient interface {
	Enabled() bool
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName, caption string) error
}

type Service struct {
	tgClient     TelegramClient
	store        storage.ObjectStore
	doctorChatID int64
	reportFrom   triage.Classification
	fonts        []string
	log          *zap.Logger
}

// NewService builds the report sender. tg and store may be nil; fontPath is
// tried before the usual DejaVu locations.
func NewService(tg TelegramClient, store storage.ObjectStore, doctorChatID int64, reportFrom triage.Classification, fontPath string, log *zap.Logger) *Service {
	return &Service{
		tgClient:     tg,
		store:        store,
		doctorChatID: doctorChatID,
		reportFrom:   reportFrom,
		fonts:        fontCandidates(fontPath),
		log:          log,
	}
}

// ShouldNotify is true for emergencies and classifications at or above the
// report threshold.
func (s *Service) ShouldNotify(res triage.FinalResult) bool {
	return res.Emergency || res.Classification.Rank() >= s.reportFrom.Rank()
}

// SendDoctorReport archives the PDF when a store is configured and sends it
// to the doctor's chat when ShouldNotify holds. It returns the storage key.
func (s *Service) SendDoctorReport(ctx context.Context, r encounter.Record) (string, error) {
	notify := s.ShouldNotify(r.Result) && s.tgClient != nil && s.tgClient.Enabled() && s.doctorChatID != 0
	if s.store == nil && !notify {
		s.log.Debug("report skipped", zap.String("session_id", r.SessionID),
			zap.String("classification", string(r.Result.Classification)))
		return "", nil
	}

	if notify && r.Result.Emergency {
		if err := s.tgClient.SendMessage(ctx, s.doctorChatID, Alert(r)); err != nil {
			s.log.Error("error sending emergency alert", zap.Int64("chat_id", s.doctorChatID), zap.Error(err))
		}
	}

	s.log.Info("generating triage report", zap.String("session_id", r.SessionID))
	data, err := s.Render(r)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("triagem_%s.pdf", r.SessionID)
	var key string
	if s.store != nil {
		key, err = s.store.Upload(ctx, "reports/"+fileName, data, "application/pdf")
		if err != nil {
			return "", err
		}
	}

	if notify {
		if err := s.tgClient.SendDocument(ctx, s.doctorChatID, data, fileName, Caption(r)); err != nil {
			s.log.Error("error sending telegram document", zap.Int64("chat_id", s.doctorChatID), zap.Error(err))
			return key, err
		}
		s.log.Info("report sent to doctor", zap.String("session_id", r.SessionID))
	}
	return key, nil
}

// Caption is the one-line message attached to the document.
func Caption(r encounter.Record) string {
	caption := fmt.Sprintf("Triagem dengue: %s (%s), score %.1f, confiança %.0f%%",
		r.Result.Classification, r.Result.Color, r.Result.Score, r.Result.Confidence*100)
	if r.Result.Emergency {
		caption = "EMERGÊNCIA - " + caption
	}
	return caption
}

// Alert is the text message sent ahead of the report for emergencies.
func Alert(r encounter.Record) string {
	msg := fmt.Sprintf("EMERGÊNCIA na triagem %s: %s", r.SessionID, r.Result.Classification)
	if r.PatientRef != "" {
		msg += fmt.Sprintf(", paciente %s", r.PatientRef)
	}
	if len(r.Result.CriticalSigns) > 0 {
		msg += ". Sinais: " + strings.Join(r.Result.CriticalSigns, ", ")
	}
	return msg + ". Relatório a seguir."
}

// Section is a titled block of report lines.
type Section struct {
	Title string
	Lines []string
}

// Sections lays out the report content independently of the PDF renderer.
func Sections(r encounter.Record) []Section {
	res := r.Result
	header := Section{Lines: []string{
		fmt.Sprintf("Data: %s", r.CreatedAt.Format("02.01.2006 15:04")),
		fmt.Sprintf("Sessão: %s", r.SessionID),
	}}
	if r.PatientRef != "" {
		header.Lines = append(header.Lines, fmt.Sprintf("Paciente: %s", r.PatientRef))
	}

	risk := Section{Title: "Classificação de risco:", Lines: []string{
		fmt.Sprintf("%s (%s) - score %.1f", res.Classification, res.Color, res.Score),
		fmt.Sprintf("Confiança: %.2f (completude %.2f, clareza %.2f, cobertura %.2f)",
			res.Confidence, res.Breakdown.Completeness, res.Breakdown.Clarity, res.Breakdown.Coverage),
		fmt.Sprintf("Encerramento: %s", reasonText(res.Reason)),
		fmt.Sprintf("Conduta: %s", res.Conduct),
	}}
	if res.Emergency {
		risk.Lines = append(risk.Lines, "SINAL DE GRAVIDADE PRESENTE")
	}
	if len(res.CriticalSigns) > 0 {
		risk.Lines = append(risk.Lines, "Sinais críticos: "+strings.Join(res.CriticalSigns, ", "))
	}
	if r.Abstention.Abstain {
		risk.Lines = append(risk.Lines, "Avaliação presencial recomendada: "+strings.Join(r.Abstention.Reasons, "; "))
	}

	answers := Section{Title: "Respostas coletadas:"}
	if len(res.Answers) == 0 {
		answers.Lines = append(answers.Lines, "- Nenhuma resposta registrada.")
	}
	for _, a := range res.Answers {
		label := a.Text
		if label == "" {
			label = a.QuestionID
		}
		answers.Lines = append(answers.Lines, fmt.Sprintf("- %s: %s", label, a.Value))
	}

	out := []Section{header, risk, answers}
	if r.Recommendation != "" {
		out = append(out, Section{Title: "Recomendações:", Lines: []string{r.Recommendation}})
	}
	return out
}

func reasonText(reason triage.TerminationReason) string {
	switch reason {
	case triage.ReasonEmergency:
		return "sinal de gravidade"
	case triage.ReasonConfident:
		return "confiança atingida"
	case triage.ReasonExhausted:
		return "perguntas esgotadas"
	default:
		return string(reason)
	}
}

func fontCandidates(fontPath string) []string {
	paths := []string{
		"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	}
	if fontPath != "" {
		paths = append([]string{fontPath}, paths...)
	}
	return paths
}

// Render draws the report as an A4 PDF.
func (s *Service) Render(r encounter.Record) ([]byte, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fonts {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, install ttf-dejavu or set TRIAGE_FONT_PATH: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	if err := pdf.Cell(nil, "Relatório de triagem - Dengue"); err != nil {
		return nil, err
	}
	pdf.Br(30)

	for _, sec := range Sections(r) {
		if sec.Title != "" {
			if err := pdf.SetFont("DejaVu", "", 14); err != nil {
				return nil, err
			}
			if err := pdf.Cell(nil, sec.Title); err != nil {
				return nil, err
			}
			pdf.Br(18)
		}
		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			return nil, err
		}
		for _, line := range sec.Lines {
			parts, err := pdf.SplitText(line, 500)
			if err != nil {
				parts = []string{line}
			}
			for _, p := range parts {
				if pdf.GetY() > 800 {
					pdf.AddPage()
				}
				if err := pdf.Cell(nil, p); err != nil {
					return nil, err
				}
				pdf.Br(14)
			}
		}
		pdf.Br(10)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
