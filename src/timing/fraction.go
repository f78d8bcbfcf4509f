/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package timing

/*
NearestFraction finds the best approximation c/d ≈ a/b with d <= maxDenominator
and returns c, d and the error a/b - c/d.

This is what lets a synthesizer with fractional dividers hit an arbitrary
timebase frequency. A fixed denominator such as 2^20-1 quantizes the output
badly at some frequencies; the convergents of the continued fraction of a/b
are the best rational approximations for their denominator so we walk them
until the next one would be too large.
*/
func NearestFraction(a, b, maxDenominator uint64) (c, d uint64, eps float64) {
	c, d = continuedFraction(a, b, 0, 1, maxDenominator)
	eps = float64(a)/float64(b) - float64(c)/float64(d)
	return c, d, eps
}

/*
continuedFraction expands a/b recursively using

	cf(a, b) = floor(a/b) + 1 / cf(b, a mod b)

and stops when the denominator of the convergent would exceed
maxDenominator. The running pair (e, f) carries the previous two convergent
denominators and should start as (0, 1).
*/
func continuedFraction(a, b, e, f, maxDenominator uint64) (c, d uint64) {
	term := a / b
	denom := f + term*e
	if denom > maxDenominator {
		return 1, 0
	}
	rem := a - term*b
	if rem == 0 {
		return term, 1
	}
	// a/b = term + 1/(cx/dx) = (term*cx + dx) / cx
	cx, dx := continuedFraction(b, rem, denom, e, maxDenominator)
	return term*cx + dx, cx
}
