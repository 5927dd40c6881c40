package led

// WS281xConfig configures the PWM/DMA driver backed by the rpi_ws281x C
// library. There is no gamma field: the render post stage applies gamma
// before pixels reach any driver, so the library keeps its identity table.
type WS281xConfig struct {
	Count      int    `yaml:"count"`
	Pin        int    `yaml:"gpio"`
	DMA        int    `yaml:"dma"`
	Frequency  int    `yaml:"frequency"`
	Channel    int    `yaml:"channel"`
	Invert     bool   `yaml:"invert"`
	Brightness int    `yaml:"brightness"`
	StripType  string `yaml:"strip_type"`
}

// DefaultWS281x matches the usual Raspberry Pi wiring on GPIO18.
func DefaultWS281x(count int) WS281xConfig {
	return WS281xConfig{
		Count:      count,
		Pin:        18,
		DMA:        10,
		Frequency:  800000,
		Brightness: 255,
		StripType:  "GRB",
	}
}
