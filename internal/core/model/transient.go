// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

// GeneratedClip is a transient object used to pass a finished video
// between pipeline steps. It exists only for the duration of a chain
// execution and is never persisted directly; the archive step turns it
// into a Result.
type GeneratedClip struct {
	Bytes          []byte // The raw video bytes downloaded from the hosted model.
	MIMEType       string // The MIME type of the video, typically video/mp4.
	DirectorPrompt string // The cinematography brief that produced the clip.
}
