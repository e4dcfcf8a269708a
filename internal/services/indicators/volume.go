package indicators

// DefaultVolumeWindow is the trailing window used by the volume spike flag.
const DefaultVolumeWindow = 20

// VolumeSpike flags indices whose volume exceeds multiplier times the
// trailing average volume. Indices before the window fills are false.
func VolumeSpike(volumes []float64, multiplier float64, window int) ([]bool, error) {
	avg, err := SMA(volumes, window)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(volumes))
	for i, v := range volumes {
		if Defined(avg[i]) {
			out[i] = v > avg[i]*multiplier
		}
	}
	return out, nil
}
