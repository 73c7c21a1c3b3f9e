/*
Package ports defines the driven ports (interfaces) for polyglotter.

These interfaces decouple transforms from where their input values live,
allowing the same definition to read terms from memory, Redis or any other
backend.

# Key Interfaces

  - TermSource: binds a definition term to a key held by a backend.
  - ValueStore: reads and writes raw values by key.
  - Refresher: pulls changed values into the bound terms, which in turn
    invalidates every operation that depends on them.
  - Watchable: signals that the backend changed and a refresh is due.
*/
package ports
