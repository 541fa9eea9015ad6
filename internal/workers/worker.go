package workers

import (
	"context"
	"log"
	"sync"
	"time"
)

// Worker é uma tarefa periódica de manutenção.
type Worker interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// Manager executa workers registrados em loops de ticker independentes.
type Manager struct {
	workers  []Worker
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

func NewManager() *Manager {
	return &Manager{
		stopChan: make(chan struct{}),
	}
}

func (m *Manager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = append(m.workers, w)
	log.Printf("✅ Worker '%s' registrado (intervalo: %v)", w.Name(), w.Interval())
}

func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, worker := range m.workers {
		m.wg.Add(1)
		go m.runWorker(worker)
	}

	log.Printf("🚀 %d worker(s) iniciado(s)", len(m.workers))
}

func (m *Manager) runWorker(w Worker) {
	defer m.wg.Done()

	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	m.execute(w)

	for {
		select {
		case <-ticker.C:
			m.execute(w)
		case <-m.stopChan:
			log.Printf("🛑 Worker '%s' parado", w.Name())
			return
		}
	}
}

func (m *Manager) execute(w Worker) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()

	if err := w.Run(ctx); err != nil {
		log.Printf("❌ Erro no worker '%s': %v", w.Name(), err)
		return
	}

	log.Printf("✅ Worker '%s' executado (duração: %v)", w.Name(), time.Since(start))
}

func (m *Manager) Stop() {
	close(m.stopChan)
	m.wg.Wait()
}
