// Package infra contém implementações concretas de domain.StatsStore:
// MemoryStatsStore (testes/desenvolvimento) e RedisStatsStore (produção).
package infra
