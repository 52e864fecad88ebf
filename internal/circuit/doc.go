// Package circuit describes a fixed-size MNA system as data.
//
// A [Circuit] lists the static [Stamp] entries of the system matrix G and
// the per-step [Source] entries of the right-hand side b:
//
//   - G is assembled once by [Circuit.Assemble]
//   - b is rebuilt every step by [Circuit.RHS] from the previous state, so
//     companion-model history terms (L/h·i, J/h·ω) and constant sources
//     live in the same list
//
// [DCMotor] builds the bundled armature-plus-shaft topology. Other circuits
// can be declared in YAML and loaded through the config package.
package circuit
