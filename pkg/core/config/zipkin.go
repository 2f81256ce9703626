package config

import (
	"github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/reporter/http"
)

type ZipkinConfig struct {
	Url        string `yaml:"url"`
	SampleRate uint64 `yaml:"sample-rate"` // 每 N 个请求采样 1 个
}

func InitZipkin(zipkinConfig ZipkinConfig, appName, host string) (*zipkin.Tracer, error) {
	reporter := http.NewReporter(zipkinConfig.Url)
	endpoint, err := zipkin.NewEndpoint(appName, host)
	if err != nil {
		return nil, err
	}
	mod := zipkinConfig.SampleRate
	if mod == 0 {
		mod = 1
	}
	return zipkin.NewTracer(
		reporter,
		zipkin.WithLocalEndpoint(endpoint),
		zipkin.WithSampler(zipkin.NewModuloSampler(mod)),
	)
}
