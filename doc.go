// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package powermon is a container for an INA226 power monitor driver and the
// tools to log its measurements.
//
// The driver lives in ina226, the ina226 command in cmd/ina226.
package powermon
