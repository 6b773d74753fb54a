package metrics

import "github.com/prometheus/client_golang/prometheus"

// DBPoolStatFunc reports database/sql pool statistics.
type DBPoolStatFunc func() (open, idle, inUse int)

type dbPoolCollector struct {
	statFunc DBPoolStatFunc

	openDesc  *prometheus.Desc
	idleDesc  *prometheus.Desc
	inUseDesc *prometheus.Desc
}

func NewDBPoolCollector(statFunc DBPoolStatFunc) prometheus.Collector {
	return &dbPoolCollector{
		statFunc: statFunc,
		openDesc: prometheus.NewDesc(
			"crm_db_pool_open_conns",
			"Number of established connections in the DB pool.",
			nil, nil,
		),
		idleDesc: prometheus.NewDesc(
			"crm_db_pool_idle_conns",
			"Number of idle connections in the DB pool.",
			nil, nil,
		),
		inUseDesc: prometheus.NewDesc(
			"crm_db_pool_in_use_conns",
			"Number of connections currently in use.",
			nil, nil,
		),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openDesc
	ch <- c.idleDesc
	ch <- c.inUseDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	open, idle, inUse := c.statFunc()
	ch <- prometheus.MustNewConstMetric(c.openDesc, prometheus.GaugeValue, float64(open))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(idle))
	ch <- prometheus.MustNewConstMetric(c.inUseDesc, prometheus.GaugeValue, float64(inUse))
}
