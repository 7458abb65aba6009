// Package coordinator runs the top-level simulation loop: it owns the
// chain, mempool, scheduler, topology, and RNG, and drives them to a
// termination predicate (spec §4.6). No other package is allowed to mutate
// these directly (spec §5) — consensus and attack strategies only ever see
// them through the values the coordinator passes in.
package coordinator

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/chainsim/simulator/attack"
	"github.com/chainsim/simulator/config"
	"github.com/chainsim/simulator/consensus"
	"github.com/chainsim/simulator/core"
	"github.com/chainsim/simulator/events"
	"github.com/chainsim/simulator/metrics"
	"github.com/chainsim/simulator/network"
	"github.com/chainsim/simulator/scheduler"
	"github.com/chainsim/simulator/simrand"
	"github.com/chainsim/simulator/storage"
	"github.com/chainsim/simulator/wallet"
)

const secondsPerYear = 365.25 * 24 * 3600

// Coordinator owns every piece of mutable simulation state and drives the
// scheduler to completion.
type Coordinator struct {
	cfg *config.Config

	sched    *scheduler.Scheduler
	rng      *rand.Rand
	rngSeed  int64
	counter  *simrand.Counter
	strategy consensus.Strategy

	producers []core.Producer
	topology  *network.Topology
	chain     *core.ChainState
	mempool   *core.Mempool
	wallets   []*wallet.Wallet
	nextTxID  int64

	attackStrategy attack.Strategy

	metrics *metrics.Accumulator
	emitter *events.Emitter

	trace func(format string, args ...any)

	pendingProp map[int64]int64 // height -> accumulated BFS hop sum, awaiting finalization
	finalizedUp int64           // highest height whose propagation has been finalized, -1 initially
}

// New builds a Coordinator ready to Run from a validated config. cfg must
// already have passed cfg.Validate().
func New(cfg *config.Config) (*Coordinator, error) {
	seed := simrand.DeriveSeed(cfg.Simulation.Seed)
	rng, counter := simrand.NewCounted(seed)

	producers, err := buildProducers(cfg, rng)
	if err != nil {
		return nil, err
	}

	topology := network.Build(cfg.Network.Nodes, cfg.Network.Neighbors, permPicker(rng))

	var maxHalvings *int64
	if cfg.Economics.MaxHalvings != nil {
		v := *cfg.Economics.MaxHalvings
		maxHalvings = &v
	}
	econ := core.Economics{
		InitialReward:    cfg.Economics.InitialReward,
		HalvingInterval:  cfg.Economics.HalvingInterval,
		MaxHalvings:      maxHalvings,
		RetargetInterval: cfg.Mining.RetargetInterval,
		TargetWindow:     float64(cfg.Mining.RetargetInterval) * cfg.Mining.BlockTime,
	}
	chain := core.NewChainState(econ, cfg.Mining.Difficulty)

	consensusType := consensus.Type(cfg.Consensus.Type)
	strategy := consensus.New(consensus.Config{
		Type:      consensusType,
		BlockTime: cfg.Mining.BlockTime,
	})

	var attackStrategy attack.Strategy
	if cfg.Attack.Name != "" {
		attackStrategy, err = attack.New(cfg.Attack.Name, cfg.Attack.Options)
		if err != nil {
			return nil, fmt.Errorf("coordinator: build attack strategy: %w", err)
		}
		if eclipseAttack, ok := attackStrategy.(*attack.Eclipse); ok {
			eclipseAttack.Apply(topology)
		}
	}

	wallets := make([]*wallet.Wallet, cfg.Transactions.Wallets)
	for i := range wallets {
		firstEmit := rng.Float64() * cfg.Transactions.Interval
		wallets[i] = wallet.New(i, cfg.Transactions.TransactionsPerWallet, firstEmit)
	}

	c := &Coordinator{
		cfg:         cfg,
		sched:       scheduler.New(),
		rng:         rng,
		rngSeed:     seed,
		counter:     counter,
		strategy:    strategy,
		producers:   producers,
		topology:    topology,
		chain:       chain,
		mempool:     core.NewMempool(),
		wallets:     wallets,
		attackStrategy: attackStrategy,
		metrics:     metrics.NewAccumulator(),
		emitter:     events.NewEmitter(),
		trace:       newTracer(cfg.Simulation.Debug),
		pendingProp: make(map[int64]int64),
		finalizedUp: -1,
	}

	if err := c.seedInitialEvents(); err != nil {
		return nil, err
	}
	return c, nil
}

// Resume rebuilds a Coordinator from a checkpoint written by a prior run's
// Run loop. Per spec §9's design note, the pending-event queue is not
// stored verbatim: it is re-derived here from the restored chain and
// wallet state exactly as a fresh run derives its initial events, so
// resume is deterministic as long as the RNG stream is restored to the
// exact position it had reached (spec §4.8, §8 round-trip law 9).
func Resume(cfg *config.Config, state storage.SimulationState) (*Coordinator, error) {
	rng, counter := simrand.RestoreCounted(state.Seed, state.RNGDraw)

	producers, err := buildProducers(cfg, rng)
	if err != nil {
		return nil, err
	}
	// New builds the topology from the seed's first draws, so a fresh stream
	// on the same seed rebuilds the same adjacency.
	topology := network.Build(cfg.Network.Nodes, cfg.Network.Neighbors, permPicker(simrand.New(state.Seed)))
	for id, h := range state.NodeHeights {
		if id >= 0 && id < len(topology.Nodes) {
			topology.Nodes[id].LastKnownHeight = h
		}
	}

	var maxHalvings *int64
	if cfg.Economics.MaxHalvings != nil {
		v := *cfg.Economics.MaxHalvings
		maxHalvings = &v
	}
	econ := core.Economics{
		InitialReward:    cfg.Economics.InitialReward,
		HalvingInterval:  cfg.Economics.HalvingInterval,
		MaxHalvings:      maxHalvings,
		RetargetInterval: cfg.Mining.RetargetInterval,
		TargetWindow:     float64(cfg.Mining.RetargetInterval) * cfg.Mining.BlockTime,
	}
	chain := core.NewChainState(econ, cfg.Mining.Difficulty)
	chain.RestoreFrom(state.Chain)

	strategy := consensus.New(consensus.Config{
		Type:      consensus.Type(cfg.Consensus.Type),
		BlockTime: cfg.Mining.BlockTime,
	})

	var attackStrategy attack.Strategy
	if cfg.Attack.Name != "" {
		attackStrategy, err = attack.New(cfg.Attack.Name, cfg.Attack.Options)
		if err != nil {
			return nil, fmt.Errorf("coordinator: build attack strategy: %w", err)
		}
		if eclipseAttack, ok := attackStrategy.(*attack.Eclipse); ok {
			eclipseAttack.Apply(topology)
		}
	}

	mempool := core.NewMempool()
	mempool.Restore(state.Mempool)

	accum := metrics.NewAccumulator()
	accum.Restore(state.Metrics)

	// Every emitted transaction took one ID and one unit of a wallet's
	// budget, so the spent budgets give the next unused ID.
	var nextTxID int64
	for _, w := range state.Wallets {
		nextTxID += int64(cfg.Transactions.TransactionsPerWallet - w.RemainingTxs)
	}

	c := &Coordinator{
		cfg:            cfg,
		sched:          scheduler.Restore(nil, 0, state.CurrentTime),
		rng:            rng,
		rngSeed:        state.Seed,
		counter:        counter,
		strategy:       strategy,
		producers:      producers,
		topology:       topology,
		chain:          chain,
		mempool:        mempool,
		wallets:        state.Wallets,
		nextTxID:       nextTxID,
		attackStrategy: attackStrategy,
		metrics:        accum,
		emitter:        events.NewEmitter(),
		trace:          newTracer(cfg.Simulation.Debug),
		pendingProp:    make(map[int64]int64),
		finalizedUp:    chain.Height(),
	}

	if err := c.seedInitialEvents(); err != nil {
		return nil, err
	}
	return c, nil
}

func newTracer(enabled bool) func(string, ...any) {
	if !enabled {
		return func(string, ...any) {}
	}
	return func(format string, args ...any) {
		log.Printf("[coordinator] "+format, args...)
	}
}

// buildProducers constructs the producer set from config, marking producer
// 0 as the adversary and rescaling capacities when an attacker-hashrate
// fraction is configured (spec §6's --attacker-hashrate).
func buildProducers(cfg *config.Config, rng *rand.Rand) ([]core.Producer, error) {
	capacities := cfg.ResolveCapacities()
	producers := make([]core.Producer, len(capacities))
	for i, capacity := range capacities {
		producers[i] = core.Producer{ID: i, Capacity: capacity}
	}
	if share := attackerShare(cfg); share > 0 {
		applyAttackerShare(producers, share)
	}
	return producers, nil
}

func attackerShare(cfg *config.Config) float64 {
	switch cfg.Attack.Name {
	case "selfish", "double-spend":
	default:
		return 0
	}
	v, ok := cfg.Attack.Options["attacker_hashrate"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// applyAttackerShare designates producers[0] as the adversary and rescales
// every producer's capacity so producers[0]'s share of total capacity
// equals share exactly, preserving the relative capacities among the
// remaining (honest) producers.
func applyAttackerShare(producers []core.Producer, share float64) {
	if len(producers) == 0 || share <= 0 {
		return
	}
	total := core.TotalCapacity(producers)
	if total <= 0 {
		return
	}
	producers[0].Adversary = true
	honestTotal := total - producers[0].Capacity
	if share >= 1 || honestTotal <= 0 {
		producers[0].Capacity = total
		for i := 1; i < len(producers); i++ {
			producers[i].Capacity = 0
		}
		return
	}
	attackerCap := total * share
	honestScale := (total - attackerCap) / honestTotal
	producers[0].Capacity = attackerCap
	for i := 1; i < len(producers); i++ {
		producers[i].Capacity *= honestScale
	}
}

// permPicker returns a network.Build "pick" function: a fresh random
// permutation of [0,n) per call, so each node's candidate peers are drawn
// without replacement in random order.
func permPicker(rng *rand.Rand) func(n int) []int {
	return func(n int) []int {
		return rng.Perm(n)
	}
}

func (c *Coordinator) originNode(producerID int) int {
	if len(c.topology.Nodes) == 0 {
		return 0
	}
	return producerID % len(c.topology.Nodes)
}

func (c *Coordinator) seedInitialEvents() error {
	for _, w := range c.wallets {
		if !w.Exhausted() {
			c.sched.Schedule(scheduler.TxEmit, w.NextEmitAt, w.ID)
		}
	}
	if err := c.scheduleNextBlockCandidate(); err != nil {
		return err
	}

	if c.cfg.Simulation.Years > 0 {
		c.sched.Schedule(scheduler.Terminate, c.cfg.Simulation.Years*secondsPerYear, nil)
	}
	if ds, ok := c.attackStrategy.(*attack.DoubleSpend); ok {
		armTime := 0.0
		if v, ok := c.cfg.Attack.Options["arm_time"]; ok {
			if f, ok := v.(float64); ok {
				armTime = f
			}
		}
		c.sched.Schedule(scheduler.AttackTick, armTime, ds)
	}
	return nil
}

// scheduleNextBlockCandidate samples the next (producer, delay) pair from
// the active consensus strategy and schedules the BlockCandidate event.
// Returns an error (producer-selection underflow, spec §7) if every
// producer has non-positive capacity.
func (c *Coordinator) scheduleNextBlockCandidate() error {
	producerID, delay := c.strategy.NextBlock(c.rng, c.producers, c.chain.Difficulty())
	if producerID < 0 {
		return fmt.Errorf("coordinator: producer-selection underflow: all producer capacities are non-positive")
	}
	c.sched.Schedule(scheduler.BlockCandidate, c.sched.CurrentTime()+delay, producerID)
	return nil
}

// Summary is the coordinator's final report, handed to the caller for
// console printing and/or metrics export.
type Summary struct {
	Blocks          int64
	EventsProcessed int64
	EndTime         float64
	Chain           *core.ChainState
	Metrics         *metrics.Accumulator
	AttackMetrics   map[string]any
}

// Run executes the scheduler until the configured termination predicate
// fires, printing a summary and (if configured) writing a checkpoint every
// print_interval blocks, and returns the final Summary.
func (c *Coordinator) Run() (*Summary, error) {
	for {
		ev, ok := c.sched.Pop()
		if !ok {
			break
		}

		switch ev.Kind {
		case scheduler.BlockCandidate:
			if err := c.handleBlockCandidate(ev); err != nil {
				return nil, err
			}
		case scheduler.PropagationArrival:
			c.handlePropagationArrival(ev)
		case scheduler.TxEmit:
			c.handleTxEmit(ev)
		case scheduler.AttackTick:
			c.handleAttackTick(ev)
		case scheduler.Terminate:
			c.trace("terminate event fired at t=%.3f", c.sched.CurrentTime())
			c.finishRun()
			return c.summary(), nil
		}

		if c.terminationReached() {
			c.finishRun()
			return c.summary(), nil
		}
	}
	c.finishRun()
	return c.summary(), nil
}

func (c *Coordinator) terminationReached() bool {
	if c.cfg.Simulation.Blocks > 0 && c.chain.Height()+1 >= c.cfg.Simulation.Blocks {
		return true
	}
	return false
}

// finishRun drops all in-flight events (spec §5: "in-flight scheduled
// events past termination are dropped") and finalizes any propagation
// still pending.
func (c *Coordinator) finishRun() {
	c.sched.Drop(func(scheduler.Event) bool { return false })
	for h := c.finalizedUp + 1; h <= c.chain.Height(); h++ {
		c.finalizePropagation(h)
	}
}

func (c *Coordinator) summary() *Summary {
	var attackMetrics map[string]any
	if c.attackStrategy != nil {
		attackMetrics = c.attackStrategy.Metrics()
	}
	popped, _ := c.sched.Stats()
	return &Summary{
		Blocks:          c.chain.Height() + 1,
		EventsProcessed: popped,
		EndTime:         c.sched.CurrentTime(),
		Chain:           c.chain,
		Metrics:         c.metrics,
		AttackMetrics:   attackMetrics,
	}
}

func (c *Coordinator) handleBlockCandidate(ev scheduler.Event) error {
	producerID := ev.Payload.(int)
	producer, ok := c.findProducer(producerID)
	if !ok {
		return fmt.Errorf("coordinator: block-candidate for unknown producer %d", producerID)
	}

	// Only a block the attacker is privately extending stacks on top of its
	// own outstanding private depth — an honestly-produced block always
	// extends the real chain tip directly, even while an attacker is
	// withholding blocks behind the scenes, so pendingDepth must not leak
	// into its height.
	pendingDepth := 0
	if c.attackStrategy != nil && producer.Adversary {
		pendingDepth = c.attackStrategy.PendingDepth()
	}
	height := c.chain.Height() + 1 + int64(pendingDepth)
	now := c.sched.CurrentTime()

	txs := c.mempool.Drain(c.cfg.Mining.BlockSize)
	total := core.TotalCapacity(c.producers)
	var share float64
	if total > 0 {
		share = producer.Capacity / total
	}
	witness := core.Witness{Kind: c.strategy.Kind(), Share: share}
	block := core.NewBlock(height, producer.ID, height-1, now, txs, c.chain.NextReward(), c.chain.Difficulty(), witness)

	var decision attack.Decision
	if c.attackStrategy != nil {
		decision = c.attackStrategy.OnBlock(attack.BlockContext{
			Block:       block,
			IsAttacker:  producer.Adversary,
			ChainHeight: c.chain.Height(),
			Now:         now,
			Rng:         c.rng,
		})
	} else {
		decision = attack.Decision{Commit: []*core.Block{block}}
	}

	for _, b := range decision.Commit {
		historyLen := len(c.chain.History())
		if err := c.chain.Append(b); err != nil {
			return fmt.Errorf("coordinator: append block: %w", err)
		}
		c.metrics.RecordBlock(b)
		c.emitter.Emit(events.Event{Type: events.TypeBlockProduced, Height: b.Height, Data: map[string]any{
			"producer_id": b.ProducerID,
			"reward":      b.Reward,
		}})
		if h := c.chain.History(); len(h) > historyLen {
			point := h[len(h)-1]
			c.emitter.Emit(events.Event{Type: events.TypeRetarget, Height: point.Height, Data: map[string]any{"difficulty": point.Difficulty}})
		}
		if interval := c.chain.Economics.HalvingInterval; interval > 0 && b.Height > 0 && b.Height%interval == 0 {
			c.emitter.Emit(events.Event{Type: events.TypeHalving, Height: b.Height, Data: map[string]any{"reward": b.Reward}})
		}
		network.Produce(c.topology, c.sched, c.originNode(b.ProducerID), b.Height, now)
		c.trace("block %d producer=%d reward=%.4f difficulty=%.4f txs=%d", b.Height, b.ProducerID, b.Reward, b.Difficulty, b.TxCount)

		for h := c.finalizedUp + 1; h < b.Height; h++ {
			c.finalizePropagation(h)
		}
	}

	if c.chain.Height()+1 < c.cfg.Simulation.Blocks || c.cfg.Simulation.Blocks == 0 {
		if err := c.scheduleNextBlockCandidate(); err != nil {
			return err
		}
	}

	if c.cfg.Simulation.PrintInterval > 0 && (c.chain.Height()+1)%c.cfg.Simulation.PrintInterval == 0 {
		c.printSummary()
		if c.cfg.CheckpointPath != "" {
			if err := c.checkpoint(); err != nil {
				log.Printf("[checkpoint] write failed: %v", err)
			}
		}
	}
	return nil
}

func (c *Coordinator) findProducer(id int) (core.Producer, bool) {
	for _, p := range c.producers {
		if p.ID == id {
			return p, true
		}
	}
	return core.Producer{}, false
}

func (c *Coordinator) handlePropagationArrival(ev scheduler.Event) {
	arr := ev.Payload.(network.Arrival)
	if network.Deliver(c.topology, c.sched, arr.To, arr.Height, c.sched.CurrentTime(), arr.Hops) {
		c.pendingProp[arr.Height] += int64(arr.Hops)
	}
}

// finalizePropagation records the final propagation outcome for height,
// treating any node that never received it as a loss (spec §7), once no
// more blocks at a greater height remain to trigger further BFS fan-out
// for it.
func (c *Coordinator) finalizePropagation(height int64) {
	if height > c.finalizedUp {
		reached, total := network.Reached(c.topology, height)
		c.metrics.RecordPropagation(reached, total, int(c.pendingProp[height]))
		if reached < total {
			c.emitter.Emit(events.Event{Type: events.TypePropagationLoss, Height: height, Data: map[string]any{
				"reached": reached, "total": total,
			}})
		}
		delete(c.pendingProp, height)
		c.finalizedUp = height
	}
}

func (c *Coordinator) handleTxEmit(ev scheduler.Event) {
	walletID := ev.Payload.(int)
	w := c.wallets[walletID]
	if w.Exhausted() {
		return
	}
	tx := core.NewTransaction(c.nextTxID, w.ID, c.sched.CurrentTime())
	c.nextTxID++
	c.mempool.Enqueue(tx)
	w.Emit(c.cfg.Transactions.Interval)
	if !w.Exhausted() {
		c.sched.Schedule(scheduler.TxEmit, w.NextEmitAt, w.ID)
	}
}

func (c *Coordinator) handleAttackTick(ev scheduler.Event) {
	if ds, ok := ev.Payload.(*attack.DoubleSpend); ok {
		ds.Arm(c.chain.Height())
		c.emitter.Emit(events.Event{Type: events.TypeAttackStep, Height: c.chain.Height(), Data: map[string]any{"action": "arm"}})
	}
}

func (c *Coordinator) printSummary() {
	s := c.summary()
	log.Printf("[coordinator] t=%.1f blocks=%d mean_block_time=%.3f mean_prop_hops=%.2f prop_loss=%d tx_included=%d issuance=%.2f",
		c.sched.CurrentTime(), s.Blocks, s.Metrics.MeanBlockTime(), s.Metrics.MeanPropagationHops(), s.Metrics.PropagationLoss(), s.Metrics.TxIncluded(), s.Chain.TotalIssuance())
}

func (c *Coordinator) checkpoint() error {
	nodeHeights := make(map[int]int64, len(c.topology.Nodes))
	for _, n := range c.topology.Nodes {
		nodeHeights[n.ID] = n.LastKnownHeight
	}
	var attackState map[string]any
	if c.attackStrategy != nil {
		attackState = c.attackStrategy.Metrics()
	}
	state := storage.SimulationState{
		Seed:        c.rngSeed,
		RNGDraw:     c.counter.Draws(),
		CurrentTime: c.sched.CurrentTime(),
		Chain:       c.chain.Snapshot(),
		Mempool:     c.mempool.Pending(),
		Wallets:     c.wallets,
		NodeHeights: nodeHeights,
		Metrics:     c.metrics.Snapshot(),
		Attack:      attackState,
	}
	c.emitter.Emit(events.Event{Type: events.TypeCheckpoint, Height: c.chain.Height(), Data: map[string]any{"path": c.cfg.CheckpointPath}})
	return storage.SaveCheckpoint(c.cfg.CheckpointPath, state)
}

// Emitter exposes the coordinator's event broker so callers (e.g. a
// console summary printer, or tests) can subscribe before calling Run.
func (c *Coordinator) Emitter() *events.Emitter { return c.emitter }
