// Package kernel boots the configuration kernel in two explicit phases.
//
// BuildEarlyContext checks the install root and resolves every location
// against system properties. BuildFinalConfiguration scans components,
// merges all property sources and finalizes the load order, returning a
// Kernel the host reads from and hands its bean registry to.
//
//	early, err := kernel.BuildEarlyContext(kernel.DefaultStartupParams(system))
//	k, err := kernel.BuildFinalConfiguration(ctx, early)
//	err = k.Starting(registry)
package kernel
