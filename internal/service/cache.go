// cache.go — LRU-кэш результатов генерации сводок с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики кэша.
var (
	generationCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ms_generation_cache_hits_total",
		Help: "Общее количество попаданий в кэш результатов генерации.",
	})
	generationCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ms_generation_cache_misses_total",
		Help: "Общее количество промахов кэша результатов генерации.",
	})
)

// GenerationCache — кэш сгенерированных сводок, ключ — SHA-256 транскрипции.
// Кэш живёт в памяти процесса; сами транскрипции в нём не хранятся.
type GenerationCache struct {
	cache *expirable.LRU[string, string]
}

// NewGenerationCache создаёт кэш на maxSize записей с временем жизни ttl.
func NewGenerationCache(maxSize int, ttl time.Duration) *GenerationCache {
	return &GenerationCache{
		cache: expirable.NewLRU[string, string](maxSize, nil, ttl),
	}
}

// Get возвращает сводку для транскрипции. Обновляет метрики hit/miss.
func (c *GenerationCache) Get(transcription string) (string, bool) {
	val, ok := c.cache.Get(cacheKey(transcription))
	if ok {
		generationCacheHitsTotal.Inc()
		return val, true
	}
	generationCacheMissesTotal.Inc()
	return "", false
}

// Set сохраняет сводку для транскрипции.
func (c *GenerationCache) Set(transcription, summary string) {
	c.cache.Add(cacheKey(transcription), summary)
}

// Len возвращает текущее количество записей.
func (c *GenerationCache) Len() int {
	return c.cache.Len()
}

func cacheKey(transcription string) string {
	sum := sha256.Sum256([]byte(transcription))
	return hex.EncodeToString(sum[:])
}
