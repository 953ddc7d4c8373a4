/*
Package observability turns dispatch hooks into structured logs and Prometheus metrics.

Both are plain domain.Hooks values and can be merged:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.LogHooks(logger).Merge(metrics.Hooks())
	ec := jseval.New(channel, jseval.WithHooks(hooks))
*/
package observability
