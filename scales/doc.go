// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package scales is the static catalog of estimation scales.

Each scale is a Definition with a name, a unit, and the ordered list of
legal vote tokens. Eight scales ship: fibonacci, modified-fibonacci,
tshirt, hours, days, linear, power-of-2, and story-points.

Qualitative tokens ("?", "☕", "∞") are legal votes on the scales that
include them but carry no numeric value; NumericValue reports ok=false
for them instead of failing, so the vote ledger can record the token
while excluding it from numeric aggregation.

The catalog is read-only; there is no registration API.
*/
package scales
