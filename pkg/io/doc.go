// Package io reads and writes copper design files.
//
// # Overview
//
// A design file is TOML holding everything a check or a routing session
// needs: the layer stack and outline, footprints, placed components, net
// classes, nets, routed copper, the DRC ruleset, routing defaults and
// accepted exclusions. Lengths are strings with an optional unit ("0.25mm",
// "10mil"); a string without a unit is millimetres.
//
//	[board]
//	copper = 2
//	outline = { kind = "rect", width = "50mm", height = "40mm" }
//
//	[[footprints]]
//	name = "R0603"
//	courtyard = [{ x = "-1.5mm", y = "-0.75mm" }, ...]
//	pads = [
//	  { number = "1", offset = { x = "-0.8mm", y = "0mm" }, shape = { kind = "rect", w = "0.8mm", h = "0.9mm" } },
//	  { number = "2", offset = { x = "0.8mm", y = "0mm" }, shape = { kind = "rect", w = "0.8mm", h = "0.9mm" } },
//	]
//
//	[[components]]
//	ref = "R1"
//	footprint = "R0603"
//	position = { x = "10mm", y = "10mm" }
//
//	[[nets]]
//	name = "VCC"
//	type = "power"
//	pins = ["R1.1", "U1.8"]
//
//	[[traces]]
//	net = "VCC"
//	layer = "F.Cu"
//	start = { x = "10mm", y = "10mm" }
//	end = { x = "20mm", y = "10mm" }
//	width = "0.25mm"
//
//	[rules]
//	clearance = "0.2mm"
//
// # Loading
//
// [Load] and [Read] build a [Design]: the board through its public
// commands, so every element passes the same validation as an interactive
// edit, and the netlist through its mutations. Netlist problems are collected
// and returned together; geometry is only built once the netlist is sound.
//
// # Saving
//
// [Write] and [Save] produce a file that loads back into an equal board. IDs
// are not stored; they are reassigned in file order on load.
package io
