/*
 * Copyright 2024 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package model

type NotFoundError struct {
	err error
}

func NewNotFoundError(err error) *NotFoundError {
	return &NotFoundError{err: err}
}

func (e *NotFoundError) Error() string {
	return e.err.Error()
}

func (e *NotFoundError) Unwrap() error {
	return e.err
}

type InvalidInputError struct {
	err error
}

func NewInvalidInputError(err error) *InvalidInputError {
	return &InvalidInputError{err: err}
}

func (e *InvalidInputError) Error() string {
	return e.err.Error()
}

func (e *InvalidInputError) Unwrap() error {
	return e.err
}

type ResourceBusyError struct {
	err error
}

func NewResourceBusyError(err error) *ResourceBusyError {
	return &ResourceBusyError{err: err}
}

func (e *ResourceBusyError) Error() string {
	return e.err.Error()
}

func (e *ResourceBusyError) Unwrap() error {
	return e.err
}

type InternalError struct {
	err error
}

func NewInternalError(err error) *InternalError {
	return &InternalError{err: err}
}

func (e *InternalError) Error() string {
	return e.err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.err
}
