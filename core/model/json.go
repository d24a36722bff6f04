package model

// JSONValue holds open-ended structured data (raw telemetry payloads,
// contributing factors, operating hours, CAPA suggestions). The core never
// inspects its contents; producers and consumers agree on the shape
// out-of-band. It may be a map, a slice, a scalar or nil.
type JSONValue = any
