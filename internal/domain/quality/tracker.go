package quality

import (
	"sync"
	"time"
)

// Tracker копит счётчики звонков и распознавания речи одного клиента
type Tracker struct {
	now func() time.Time

	callStart     time.Time
	packetsSent   int
	packetsRecved int

	samples Samples

	mu sync.Mutex
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

func (t *Tracker) StartCall() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.callStart = t.now()
	t.packetsSent = 0
	t.packetsRecved = 0
}

// EndCall закрывает текущий звонок, без StartCall ничего не делает
func (t *Tracker) EndCall() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.callStart.IsZero() {
		return
	}

	t.samples.CallDurations = append(t.samples.CallDurations, t.now().Sub(t.callStart).Seconds())

	if t.packetsSent > 0 {
		loss := float64(t.packetsSent-t.packetsRecved) / float64(t.packetsSent)
		t.samples.PacketLoss = append(t.samples.PacketLoss, loss)
	}

	t.callStart = time.Time{}
}

func (t *Tracker) PacketSent() {
	t.mu.Lock()
	t.packetsSent++
	t.mu.Unlock()
}

func (t *Tracker) PacketReceived() {
	t.mu.Lock()
	t.packetsRecved++
	t.mu.Unlock()
}

// AddTranscript учитывает результат распознавания. Пустой текст игнорируется.
func (t *Tracker) AddTranscript(text string, success bool) {
	if text == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples.Transcripts = append(t.samples.Transcripts, Transcript{Text: text, Timestamp: t.now().UTC()})
	t.samples.RecognitionResults = append(t.samples.RecognitionResults, success)
}

func (t *Tracker) RecordLatency(latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples.RecognitionLatencyMs = append(t.samples.RecognitionLatencyMs, float64(latency)/float64(time.Millisecond))
}

// Samples возвращает копию накопленных счётчиков
func (t *Tracker) Samples() Samples {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Samples{
		CallDurations:        append([]float64(nil), t.samples.CallDurations...),
		PacketLoss:           append([]float64(nil), t.samples.PacketLoss...),
		RecognitionResults:   append([]bool(nil), t.samples.RecognitionResults...),
		RecognitionLatencyMs: append([]float64(nil), t.samples.RecognitionLatencyMs...),
		Transcripts:          append([]Transcript(nil), t.samples.Transcripts...),
	}
}

func (t *Tracker) Report() (Report, error) {
	return Score(t.Samples(), t.now())
}
