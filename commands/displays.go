package commands

// DisplaysCommand lists the displays of the virtual desktop in enumeration order
func (s *Service) DisplaysCommand() *CommandResponse {
	displays, err := s.capturer.ListDisplays()
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"displays": displays,
	})
}
