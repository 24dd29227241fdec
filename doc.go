// Package scenepool recycles scene instances instead of recreating them.
//
// A scene instance is an entity tree materialized from a named template.
// Creating one is expensive, so scenepool keeps released instances on
// per-template idle stacks and hands them back out, most recently released
// first.
//
// # Architecture
//
// The module is split into small packages:
//
//  1. pkg/pool: the registry, idle stacks and lifecycle state machine.
//     It knows nothing about scenes; it drives a RawInstance through a
//     Loader and a few hooks.
//
//  2. pkg/scene: an in-memory entity tree that implements RawInstance,
//     including tag grouping and the hidden-layer hook.
//
//  3. pkg/catalog: template definitions in YAML or JSON, optionally
//     compressed, and the Loader that turns them into entity trees.
//
//  4. pkg/metrics and pkg/observability: a Prometheus pool observer and
//     OpenTelemetry spans around template loads.
//
//  5. internal/simulation: a seeded spawn/release/destroy workload that
//     verifies the pool after every tick.
//
// # Quick Start
//
//	s := scene.New()
//	loader := catalog.NewLoader(catalog.Sample(), s)
//	p, _ := pool.New(loader,
//		pool.WithParenter(s.Attach),
//		pool.WithHider(scene.HideUntagged))
//
//	spark, _ := p.Acquire("fx/spark", pool.Vector3{Y: 2}, pool.Identity())
//	p.Release(spark.ID())
//
// The scenepool command wraps the same pieces:
//
//	scenepool catalog init catalog.yaml
//	scenepool simulate --ticks 500 --seed 7 --metrics-addr :9090
package scenepool
