// Package provision defines the ordered provisioning sections and runs
// them.
//
// A section is a named unit of work (system-update, telemetry, shell,
// desktop, kali-container, xhost-unit, wrapper, kali-tools). Sections
// run strictly in order; a failing section is recorded and the run
// continues to the next one, unless fail-fast is requested. The
// --only/--skip selection never reorders sections.
package provision
