// Package domain define os contratos de estatísticas usados pelos filtros
// HTTP em middleware: StatsEvent e StatsStore.
//
// Este pacote não depende de net/http nem de implementações concretas.
package domain
