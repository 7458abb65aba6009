package core

// Producer is a miner, validator, or space farmer depending on the active
// consensus discipline. Capacity is a positive float interpreted as
// hashrate, stake, or allocated space by the corresponding strategy.
type Producer struct {
	ID        int
	Capacity  float64
	Adversary bool
}

// TotalCapacity sums Capacity across producers. Used by PoW/PoSpace delay
// sampling and by the coordinator's witness share and attacker-share
// rescaling.
func TotalCapacity(producers []Producer) float64 {
	var total float64
	for _, p := range producers {
		total += p.Capacity
	}
	return total
}
