package quality

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrNoCallData = errors.New("no call data available for performance analysis")

// Веса итоговой оценки
const (
	networkWeight     = 0.4
	recognitionWeight = 0.4
	latencyWeight     = 0.2

	recentTranscripts = 5
)

type Tier string

const (
	TierExcellent Tier = "Excellent"
	TierGood      Tier = "Good"
	TierFair      Tier = "Fair"
	TierPoor      Tier = "Poor"
)

func TierFor(overall float64) Tier {
	switch {
	case overall > 90:
		return TierExcellent
	case overall > 75:
		return TierGood
	case overall > 50:
		return TierFair
	default:
		return TierPoor
	}
}

type Transcript struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Samples - накопленные счётчики одного клиента
type Samples struct {
	CallDurations        []float64    `json:"call_durations_seconds"`
	PacketLoss           []float64    `json:"packet_loss"`
	RecognitionResults   []bool       `json:"recognition_results"`
	RecognitionLatencyMs []float64    `json:"recognition_latency_ms"`
	Transcripts          []Transcript `json:"transcripts"`
}

type Metrics struct {
	CallCount                   int     `json:"call_count"`
	AverageCallDurationSeconds  float64 `json:"average_call_duration_seconds"`
	AveragePacketLossPercentage float64 `json:"average_packet_loss_percentage"`
	RecognitionSuccessRate      float64 `json:"speech_recognition_success_rate"`
	AverageRecognitionLatencyMs float64 `json:"average_recognition_latency_ms"`
	TranscriptsCollected        int     `json:"transcripts_collected"`
}

// Confidence - оценки 0..100 по каждому измерению
type Confidence struct {
	NetworkQuality           float64 `json:"network_quality"`
	SpeechRecognitionQuality float64 `json:"speech_recognition_quality"`
	LatencyPerformance       float64 `json:"latency_performance"`
	OverallSystemConfidence  float64 `json:"overall_system_confidence"`
}

type Report struct {
	Timestamp         time.Time    `json:"timestamp"`
	Metrics           Metrics      `json:"metrics"`
	Confidence        Confidence   `json:"confidence"`
	Tier              Tier         `json:"tier"`
	TranscriptSamples []Transcript `json:"transcript_samples"`
}

// Score считает отчёт по накопленным счётчикам
func Score(s Samples, now time.Time) (Report, error) {
	if len(s.CallDurations) == 0 {
		return Report{}, ErrNoCallData
	}

	avgLoss := mean(s.PacketLoss)
	successRate := successRatio(s.RecognitionResults)
	avgLatency := mean(s.RecognitionLatencyMs)

	// 0% потерь = 100, 50% = 0; 0 мс = 100, 10 с = 0
	network := clamp(100-avgLoss*200, 0, 100)
	recognition := successRate * 100
	latency := clamp(100-avgLatency/100, 0, 100)

	overall := network*networkWeight + recognition*recognitionWeight + latency*latencyWeight

	recent := s.Transcripts
	if len(recent) > recentTranscripts {
		recent = recent[len(recent)-recentTranscripts:]
	}

	return Report{
		Timestamp: now.UTC(),
		Metrics: Metrics{
			CallCount:                   len(s.CallDurations),
			AverageCallDurationSeconds:  round2(mean(s.CallDurations)),
			AveragePacketLossPercentage: round2(avgLoss * 100),
			RecognitionSuccessRate:      round2(successRate * 100),
			AverageRecognitionLatencyMs: round2(avgLatency),
			TranscriptsCollected:        len(s.Transcripts),
		},
		Confidence: Confidence{
			NetworkQuality:           round2(network),
			SpeechRecognitionQuality: round2(recognition),
			LatencyPerformance:       round2(latency),
			OverallSystemConfidence:  round2(overall),
		},
		Tier:              TierFor(overall),
		TranscriptSamples: append([]Transcript(nil), recent...),
	}, nil
}

// Summary - текстовый отчёт для показа пользователю
func (r Report) Summary() string {
	var b strings.Builder

	b.WriteString("\nVOIP PERFORMANCE REPORT WITH SPEECH-TO-TEXT ANALYSIS\n\n")
	fmt.Fprintf(&b, "Overall System Confidence: %s%% (%s)\n\n", num(r.Confidence.OverallSystemConfidence), r.Tier)

	b.WriteString("Call Statistics:\n")
	fmt.Fprintf(&b, "- Total calls: %d\n", r.Metrics.CallCount)
	fmt.Fprintf(&b, "- Average duration: %s seconds\n", num(r.Metrics.AverageCallDurationSeconds))
	fmt.Fprintf(&b, "- Packet loss: %s%%\n", num(r.Metrics.AveragePacketLossPercentage))
	fmt.Fprintf(&b, "- Network quality confidence: %s%%\n\n", num(r.Confidence.NetworkQuality))

	b.WriteString("Speech Recognition:\n")
	fmt.Fprintf(&b, "- Success rate: %s%%\n", num(r.Metrics.RecognitionSuccessRate))
	fmt.Fprintf(&b, "- Average latency: %s ms\n", num(r.Metrics.AverageRecognitionLatencyMs))
	fmt.Fprintf(&b, "- Total transcripts: %d\n", r.Metrics.TranscriptsCollected)
	fmt.Fprintf(&b, "- Recognition quality confidence: %s%%\n\n", num(r.Confidence.SpeechRecognitionQuality))

	b.WriteString("System Assessment:\n")
	fmt.Fprintf(&b, "The VoIP system with speech-to-text integration is currently %s.\n", strings.ToLower(string(r.Tier)))
	b.WriteString(assessRecognition(r.Confidence.SpeechRecognitionQuality) + "\n")
	b.WriteString(assessNetwork(r.Confidence.NetworkQuality) + "\n\n")

	b.WriteString("Recent Transcripts:\n")
	for i, t := range r.TranscriptSamples {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- \"%s\"", t.Text)
	}
	b.WriteString("\n")

	return b.String()
}

func assessNetwork(confidence float64) string {
	switch {
	case confidence > 90:
		return "Network quality is excellent with minimal packet loss."
	case confidence > 70:
		return "Network quality is acceptable but shows some packet loss."
	default:
		return "Network quality issues detected - high packet loss affecting call quality."
	}
}

func assessRecognition(confidence float64) string {
	switch {
	case confidence > 75:
		return "Speech recognition is performing well with acceptable latency and high accuracy."
	case confidence > 50:
		return "Speech recognition shows moderate performance but could be improved."
	default:
		return "Speech recognition is underperforming and requires attention."
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func successRatio(results []bool) float64 {
	if len(results) == 0 {
		return 0
	}

	var ok int
	for _, r := range results {
		if r {
			ok++
		}
	}

	return float64(ok) / float64(len(results))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// num печатает число без лишних нулей: 12.5, 100, 0.33
func num(v float64) string {
	return fmt.Sprint(v)
}
