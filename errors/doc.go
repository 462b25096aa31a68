// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines an error representation that associates an error
// message to an error code.
//
// Codes are numerically identical to gRPC codes, so errors translate to gRPC
// status without information loss, while callers that never touch gRPC can
// still branch on the code alone.
//
// Errors created by this package are meant to be user-visible, therefore
// codes are chosen from the perspective of the caller: a transfer that
// exceeds the source balance is FailedPrecondition, a leaf index past the end
// of the tree is OutOfRange, and a malformed tree is InvalidArgument.
package errors
