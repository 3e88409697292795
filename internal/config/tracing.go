package config

// TracingConfig controls the OpenTelemetry tracer provider.
type TracingConfig struct {
    Enabled     bool
    Exporter    string // stdout or otlp
    Endpoint    string // OTLP/HTTP host:port
    Insecure    bool
    ServiceName string
    SampleRatio float64
}

// LoadTracingConfig reads OTEL_* variables.  Tracing is off unless
// OTEL_ENABLED is set.
func LoadTracingConfig() TracingConfig {
    c := TracingConfig{
        Enabled:     envBool("OTEL_ENABLED", false),
        Exporter:    envStr("OTEL_EXPORTER", "stdout"),
        Endpoint:    envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
        Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
        ServiceName: envStr("OTEL_SERVICE_NAME", "skillswap"),
        SampleRatio: envFloat("OTEL_SAMPLE_RATIO", 1),
    }
    if c.SampleRatio < 0 { c.SampleRatio = 0 }
    if c.SampleRatio > 1 { c.SampleRatio = 1 }
    return c
}
